// Package services holds domain checks that sit above parsing and below the
// API: currently the consistency validator for reconciled receipt records.
package services

import (
	"math"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field    string  `json:"field"`
	Code     string  `json:"code"`
	Expected float64 `json:"expected,omitempty"`
	Actual   float64 `json:"actual,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// ValidationWarning represents a non-critical issue
type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ComputedValues holds the expected values derived from the record itself
type ComputedValues struct {
	ExpectedTax   float64 `json:"expectedTax,omitempty"`
	ExpectedTotal float64 `json:"expectedTotal,omitempty"`
}

// ValidationResult is the consistency report attached to a processed receipt
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	NeedsReview bool                `json:"needsReview"`
	Errors      []ValidationError   `json:"errors"`
	Warnings    []ValidationWarning `json:"warnings"`
	Computed    ComputedValues      `json:"computed"`
}

// RecordValidator cross-checks the monetary fields of a reconciled record.
type RecordValidator struct {
	tolerance float64 // absolute tolerance in currency units
}

// NewRecordValidator creates a validator with the default one-cent tolerance.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{tolerance: 0.011}
}

// Validate reports whether the record's amounts are mutually consistent and
// which fields could not be extracted. Reconciliation should already have
// closed the arithmetic, so an error here marks a receipt worth a human look.
func (v *RecordValidator) Validate(rec *models.ReceiptRecord) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	v.validateClosure(rec, result)
	v.validateRate(rec, result)
	v.flagMissing(rec, result)

	result.Valid = len(result.Errors) == 0
	result.NeedsReview = !result.Valid || len(result.Warnings) > 0
	return result
}

// validateClosure checks total = subtotal + tax.
func (v *RecordValidator) validateClosure(rec *models.ReceiptRecord, result *ValidationResult) {
	if rec.Amount == nil || rec.SubtotalAmount == nil || rec.TaxAmount == nil {
		return
	}
	expected := round2(*rec.SubtotalAmount + *rec.TaxAmount)
	result.Computed.ExpectedTotal = expected

	if math.Abs(expected-*rec.Amount) > v.tolerance {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "amount",
			Code:     "closure_mismatch",
			Expected: expected,
			Actual:   *rec.Amount,
			Message:  "total does not equal subtotal plus tax",
		})
	}
}

// validateRate checks tax against subtotal * rate and flags unusual rates.
func (v *RecordValidator) validateRate(rec *models.ReceiptRecord, result *ValidationResult) {
	if rec.TaxPercentage == nil {
		return
	}
	pct := *rec.TaxPercentage

	if pct > 25 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "taxPercentage",
			Code:    "unusual_rate",
			Message: "tax rate above 25% is unusual for a receipt",
		})
	}

	if rec.SubtotalAmount == nil || rec.TaxAmount == nil || *rec.SubtotalAmount <= 0 {
		return
	}
	expected := round2(*rec.SubtotalAmount * pct / 100)
	result.Computed.ExpectedTax = expected

	if math.Abs(expected-*rec.TaxAmount) > 0.05 {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "taxAmount",
			Code:     "tax_rate_mismatch",
			Expected: expected,
			Actual:   *rec.TaxAmount,
			Message:  "tax does not match subtotal times rate",
		})
	}
}

// flagMissing warns on fields that could not be extracted at all.
func (v *RecordValidator) flagMissing(rec *models.ReceiptRecord, result *ValidationResult) {
	if rec.Amount == nil {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field: "amount", Code: "missing", Message: "no total could be extracted",
		})
	}
	if rec.VendorName == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field: "vendorName", Code: "missing", Message: "no vendor name could be extracted",
		})
	}
	if rec.Date == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field: "date", Code: "missing", Message: "no date could be extracted",
		})
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
