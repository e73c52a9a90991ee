// Package parser turns noisy OCR text from receipts and invoices (English
// and Spanish) into a structured, mutually consistent ReceiptRecord. It is a
// pure function of its input: no I/O, no shared state, safe for concurrent
// use. Extraction is best-effort — a field that cannot be recognized is left
// absent, never guessed from thin air and never reported as an error.
package parser

import (
	"log"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
)

// Parser runs the extraction pipeline: normalization, money-candidate
// scanning, totals segmentation, per-field pattern ladders, reconciliation.
type Parser struct {
	// Trace enables step-by-step diagnostic logging. Not part of the
	// contract; output format may change at any time.
	Trace bool
}

// New returns a ready Parser. The zero value is also usable.
func New() *Parser {
	return &Parser{}
}

// Parse extracts and reconciles the financial fields of one recognized text.
// The returned record always carries the raw input; everything else is
// optional. Parsing the same text twice yields identical records.
func (p *Parser) Parse(raw string) *models.ReceiptRecord {
	rec := &models.ReceiptRecord{RawText: raw}

	normalized := normalize(raw)
	candidates := scanMoneyCandidates(raw)
	totals := totalsSection(normalized)
	p.tracef("candidates=%v totals section %d/%d chars", candidates, len(totals), len(normalized))

	if v, ok := extractSubtotal(totals); ok {
		setAmount(&rec.SubtotalAmount, v)
	}
	// Total before tax amount: the tax validator needs the total as an upper
	// bound to tell a tax apart from a quantity or the total itself.
	if v, ok := extractTotal(normalized, candidates); ok {
		setAmount(&rec.Amount, v)
	}
	if v, ok := extractTaxPercent(totals); ok {
		setAmount(&rec.TaxPercentage, v)
	}
	if v, ok := extractTaxAmount(totals, rec.Amount, rec.SubtotalAmount); ok {
		setAmount(&rec.TaxAmount, v)
	}
	if s, ok := extractDate(normalized); ok {
		rec.Date = s
	}
	if s, ok := extractVendor(raw, normalized); ok {
		rec.VendorName = s
	}
	if s, ok := extractInvoiceNumber(raw); ok {
		rec.InvoiceNumber = s
	}
	p.tracef("extracted subtotal=%v tax=%v pct=%v total=%v vendor=%q date=%q invoice=%q",
		fmtOpt(rec.SubtotalAmount), fmtOpt(rec.TaxAmount), fmtOpt(rec.TaxPercentage), fmtOpt(rec.Amount),
		rec.VendorName, rec.Date, rec.InvoiceNumber)

	reconcile(rec, candidates, raw)
	p.tracef("reconciled subtotal=%v tax=%v pct=%v total=%v",
		fmtOpt(rec.SubtotalAmount), fmtOpt(rec.TaxAmount), fmtOpt(rec.TaxPercentage), fmtOpt(rec.Amount))

	return rec
}

func (p *Parser) tracef(format string, args ...interface{}) {
	if p.Trace {
		log.Printf("[parser] "+format, args...)
	}
}

func fmtOpt(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}
