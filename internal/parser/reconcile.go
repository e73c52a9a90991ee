package parser

import (
	"regexp"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
)

// zeroTaxRE spots an explicit zero-tax line ("ITBMS 0.00", "Tax: 0,00") in
// the raw text.
var zeroTaxRE = regexp.MustCompile(`(?i)\b(?:tax|impuestos?|itbms|iva)\b[^0-9\n]*0[.,]00\b`)

// Tolerances are intentionally asymmetric: a computed tax overrides an
// extracted one past 0.05, while the global closure check trusts total and
// subtotal past 0.10. Total and subtotal are the more reliable signals.
const (
	taxAgreement = 0.05
	closureBound = 0.10
)

// reconcile fills missing monetary fields and corrects inconsistent ones
// using total = subtotal + tax and tax = subtotal * pct/100. Steps run in a
// fixed order; each fires only when its precondition holds, and every
// derivation is rounded to 2 decimals on the spot.
func reconcile(rec *models.ReceiptRecord, candidates moneyCandidates, raw string) {
	// 1. Explicit zero-tax receipts: total known, no tax signal at all.
	if rec.Amount != nil && rec.TaxAmount == nil && rec.TaxPercentage == nil && zeroTaxRE.MatchString(raw) {
		setAmount(&rec.TaxAmount, 0)
		setAmount(&rec.TaxPercentage, 0)
		setAmount(&rec.SubtotalAmount, *rec.Amount)
	}

	// 2. Subtotal from total - tax.
	if rec.SubtotalAmount == nil && rec.Amount != nil && rec.TaxAmount != nil {
		setAmount(&rec.SubtotalAmount, *rec.Amount-*rec.TaxAmount)
	}

	// 3. Subtotal backed out of the total via the rate.
	if rec.SubtotalAmount == nil && rec.Amount != nil && rec.TaxPercentage != nil {
		setAmount(&rec.SubtotalAmount, *rec.Amount/(1+*rec.TaxPercentage/100))
		if rec.TaxAmount == nil {
			setAmount(&rec.TaxAmount, *rec.Amount-*rec.SubtotalAmount)
		}
	}

	// 4. Subtotal and rate beat an extracted tax that disagrees with them.
	if rec.SubtotalAmount != nil && rec.TaxPercentage != nil {
		computed := round2(*rec.SubtotalAmount * *rec.TaxPercentage / 100)
		if rec.TaxAmount == nil || abs(*rec.TaxAmount-computed) > taxAgreement {
			setAmount(&rec.TaxAmount, computed)
		}
	}

	// 5. Tax from total - subtotal.
	if rec.TaxAmount == nil && rec.Amount != nil && rec.SubtotalAmount != nil {
		setAmount(&rec.TaxAmount, *rec.Amount-*rec.SubtotalAmount)
	}

	// 6. Rate from tax / subtotal.
	if rec.TaxPercentage == nil && rec.TaxAmount != nil && rec.SubtotalAmount != nil && *rec.SubtotalAmount > 0 {
		setPercent(&rec.TaxPercentage, *rec.TaxAmount / *rec.SubtotalAmount * 100)
	}

	// 7. Total from subtotal + tax.
	if rec.Amount == nil && rec.SubtotalAmount != nil && rec.TaxAmount != nil {
		setAmount(&rec.Amount, *rec.SubtotalAmount+*rec.TaxAmount)
	}

	// 8. Global closure: when the triple disagrees beyond the bound, total
	// and subtotal win and tax is rewritten.
	if rec.Amount != nil && rec.SubtotalAmount != nil && rec.TaxAmount != nil {
		if abs(round2(*rec.SubtotalAmount+*rec.TaxAmount)-*rec.Amount) > closureBound {
			setAmount(&rec.TaxAmount, *rec.Amount-*rec.SubtotalAmount)
			if *rec.SubtotalAmount > 0 {
				rec.TaxPercentage = nil
				setPercent(&rec.TaxPercentage, *rec.TaxAmount / *rec.SubtotalAmount * 100)
			}
		}
	}

	// 9. Last resort: rank-1 money candidate stands in for the subtotal, or
	// the subtotal collapses onto the total (zero implied tax).
	if rec.SubtotalAmount == nil && rec.Amount != nil {
		if second, ok := candidates.fallbackSubtotal(); ok && second > 0 && second < *rec.Amount {
			setAmount(&rec.SubtotalAmount, second)
			if rec.TaxAmount == nil {
				setAmount(&rec.TaxAmount, *rec.Amount-*rec.SubtotalAmount)
			}
		} else {
			setAmount(&rec.SubtotalAmount, *rec.Amount)
		}
	}
}

// setAmount stores a rounded value into an optional field.
func setAmount(field **float64, v float64) {
	r := round2(v)
	*field = &r
}

// setPercent stores a derived rate, dropping values outside the sane [0,100]
// band instead of poisoning the record.
func setPercent(field **float64, v float64) {
	if v < 0 || v > 100 {
		return
	}
	r := round2(v)
	*field = &r
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
