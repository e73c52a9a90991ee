package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// Shared sub-expressions of the extraction ladders. The number token must
// start and end on a digit so trailing punctuation never reaches the
// currency parser.
const (
	numPat  = `-?\d+(?:[.,]\d+)*`
	pctPat  = `\d{1,2}(?:[.,]\d{1,2})?`
	gapPat  = `[^0-9\n-]*`   // label-to-number gap, same line
	taxLbl  = `(?:impuestos?|itbms|iva|tax(?:\s+amount)?|monto\s+(?:de\s+)?impuestos?)`
	datePat = `(?:\d{1,4}[./-]\d{1,2}[./-]\d{2,4}` +
		`|\d{1,2}\s+(?:de\s+)?(?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre|january|february|march|april|may|june|july|august|september|october|november|december|ene|abr|ago|dic|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)[a-z]*\.?,?\s+(?:del?\s+)?\d{2,4}` +
		`|(?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre|january|february|march|april|may|june|july|august|september|october|november|december|ene|abr|ago|dic|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{2,4})`
)

var subtotalRules = []amountRule{
	{regexp.MustCompile(`(?i)sub\s*-?\s*total(?:es)?` + gapPat + `(` + numPat + `)`), takeFirst},
	{regexp.MustCompile(`(?i)(?:base\s+imponible|monto\s+gravado(?:\s+itbms)?|importe\s+neto)` + gapPat + `(` + numPat + `)`), takeFirst},
}

var taxPercentRules = []amountRule{
	{regexp.MustCompile(`(?i)(` + pctPat + `)\s*%\s*(?:de\s+)?(?:tax|iva|itbms|impuesto)`), takeFirst},
	{regexp.MustCompile(`(?i)` + taxLbl + `[^%\n]*?(` + pctPat + `)\s*%`), takeFirst},
	{regexp.MustCompile(`(?i)(?:rate|tasa|tarifa)[^%\n]*?(` + pctPat + `)\s*%`), takeFirst},
	{regexp.MustCompile(`(?i)(` + pctPat + `)\s*%`), takeFirst},
}

var taxAmountRules = []amountRule{
	// Two numbers on the tax line: the smaller one is the tax, the other is
	// usually the adjoining total.
	{regexp.MustCompile(`(?i)\b` + taxLbl + `\b[^0-9%\n]*(` + numPat + `)[ \t]+\$?(` + numPat + `)`), takeSmaller},
	// Label with an inline rate: "IVA 16%: 25.60", "Tax (7%) 7.00".
	{regexp.MustCompile(`(?i)\b` + taxLbl + `\b\s*\(?\s*` + pctPat + `\s*%\s*\)?` + gapPat + `(` + numPat + `)`), takeFirst},
	// Plain labeled amount; a trailing percent sign disqualifies the number.
	{regexp.MustCompile(`(?i)\b` + taxLbl + `\b[^0-9%\n]*(` + numPat + `)[ \t]*(%)?`), takeUnlessPercent},
}

var totalRules = []amountRule{
	{regexp.MustCompile(`(?i)\b(?:grand\s+total|total\s+(?:a\s+pagar|general|due|factura|final)|amount\s+due|importe\s+total|monto\s+total)\b` + gapPat + `(` + numPat + `)`), takeFirst},
	{regexp.MustCompile(`(?i)(?:^|[^\w-])total\b[^0-9\n%-]*(` + numPat + `)`), takeFirst},
	{regexp.MustCompile(`(?i)\b(?:amount|importe|monto)\b` + gapPat + `(` + numPat + `)`), takeFirst},
}

// reSubtotalPhrase rewrites label variants like "sub total" and "sub-total"
// to the solid word, so the plain "total" rung cannot latch onto them.
var reSubtotalPhrase = regexp.MustCompile(`(?i)sub\s*-?\s*total`)

var dateRules = []textRule{
	{regexp.MustCompile(`(?i)(?:fecha|date)(?:\s+de\s+emisi[oó]n)?[^\S\n]*:?[^\S\n]*(` + datePat + `)`)},
	{regexp.MustCompile(`(?i)(` + datePat + `)`)},
}

var vendorLabelRules = []textRule{
	{regexp.MustCompile(`(?i)(?:raz[oó]n\s+social|nombre\s+comercial|nombre\s+del?\s+emisor)[^\S\n]*:?[^\S\n]*([^\n]+)`)},
	{regexp.MustCompile(`(?i)(?:emisor|proveedor|vendor|merchant|supplier|issued\s+by|sold\s+by)[^\S\n]*:[^\S\n]*([^\n]+)`)},
}

// sepPat requires some separation between an identifier label and its token,
// so labels embedded in longer words ("normal", "facturación") never anchor.
const (
	sepPat = `(?:\.[ \t]*|[ \t]*[:#][ \t]*|[ \t]+)`
	tokPat = `([A-Za-z0-9][A-Za-z0-9/-]*)`
)

var invoiceNumberRules = []textRule{
	{regexp.MustCompile(`(?i)\binvoice[ \t]*(?:no|number|num)` + sepPat + `#?[ \t]*` + tokPat)},
	{regexp.MustCompile(`(?i)\bfactura(?:[ \t]*[:#][ \t]*|[ \t]+(?:(?:no|n[uú]m(?:ero)?|nro)\.?|#)?[ \t]*[:#]?[ \t]*)` + tokPat)},
	{regexp.MustCompile(`(?i)\b(?:folio|serie|consecutivo)(?:[ \t]*[:#][ \t]*|[ \t]+(?:no\.?[ \t]*)?)` + tokPat)},
	{regexp.MustCompile(`(?i)\b(?:n[uú]mero|nro|no)` + sepPat + tokPat)},
	{regexp.MustCompile(`(?i)\binvoice[ \t]*[:#][ \t]*` + tokPat)},
}

var (
	reDateShaped   = regexp.MustCompile(`^\d{1,4}[./-]\d{1,2}[./-]\d{2,4}$`)
	reVendorStop   = regexp.MustCompile(`(?i)^(?:recibo|receipt|invoice|factura|fecha|date|page|p[aá]gina|ticket|tel[eé]fono|tel|rtn|ruc|nit)\b`)
	reNumericLine  = regexp.MustCompile(`^[\d\s.,:/#*-]+$`)
	reAlnumCompact = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// genericTokens are words a loose invoice-number rung can catch that are
// vocabulary, not identifiers.
var genericTokens = map[string]struct{}{
	"invoice": {}, "factura": {}, "fecha": {}, "date": {}, "total": {},
	"recibo": {}, "receipt": {}, "ticket": {}, "no": {}, "numero": {},
	"número": {}, "cliente": {}, "folio": {}, "serie": {}, "consecutivo": {},
}

// commonNounSuffixes mark tokens that are ordinary Spanish or English nouns
// rather than identifiers.
var commonNounSuffixes = []string{"ción", "cion", "sión", "sion", "miento", "idad", "tion", "ment", "ing"}

func extractSubtotal(totals string) (float64, bool) {
	return scanAmount(totals, subtotalRules, func(v float64) bool { return v > 0 })
}

func extractTaxPercent(totals string) (float64, bool) {
	// Typical real-world tax rates cap at 25; anything above is a misread.
	return scanAmount(totals, taxPercentRules, func(v float64) bool { return v >= 0 && v <= 25 })
}

func extractTaxAmount(totals string, total, subtotal *float64) (float64, bool) {
	return scanAmount(totals, taxAmountRules, func(v float64) bool {
		if v < 0 {
			return false
		}
		// The tax must sit below both known summary amounts, or the ladder
		// has picked up a quantity or the total itself.
		if total != nil && v >= *total {
			return false
		}
		if subtotal != nil && v >= *subtotal {
			return false
		}
		return true
	})
}

// extractTotal searches the entire normalized text: "total" frequently sits
// outside the detected totals block. The scanner's top value backs the ladder
// up when every pattern fails, and the result is rounded to strip OCR noise
// in trailing digits.
func extractTotal(normalized string, candidates moneyCandidates) (float64, bool) {
	scrubbed := reSubtotalPhrase.ReplaceAllString(normalized, "subtotal")
	v, ok := scanAmount(scrubbed, totalRules, func(v float64) bool { return v > 0 })
	if !ok {
		v, ok = candidates.fallbackTotal()
	}
	if !ok {
		return 0, false
	}
	return round2(v), true
}

func extractDate(normalized string) (string, bool) {
	return scanText(normalized, dateRules, nil)
}

// extractVendor prefers label-anchored patterns over the raw text, which
// keeps the proper-noun casing normalization can destroy. Without a label it
// falls back to the first plausible line of the normalized text.
func extractVendor(raw, normalized string) (string, bool) {
	if v, ok := scanText(raw, vendorLabelRules, plausibleVendorLine); ok {
		return v, true
	}
	for _, line := range strings.Split(normalized, "\n") {
		line = trimToken(line)
		if plausibleVendorLine(line) {
			return line, true
		}
	}
	return "", false
}

func plausibleVendorLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	if reVendorStop.MatchString(line) || reNumericLine.MatchString(line) {
		return false
	}
	// Short alphanumeric codes (order ids, SKUs) are not merchant names.
	if len(line) < 6 && reAlnumCompact.MatchString(line) && hasDigit(line) {
		return false
	}
	return true
}

func extractInvoiceNumber(raw string) (string, bool) {
	return scanText(raw, invoiceNumberRules, acceptInvoiceToken)
}

func acceptInvoiceToken(tok string) bool {
	if reDateShaped.MatchString(tok) {
		return false
	}
	low := strings.ToLower(tok)
	if _, generic := genericTokens[low]; generic {
		return false
	}
	for _, suffix := range commonNounSuffixes {
		if strings.HasSuffix(low, suffix) {
			return false
		}
	}
	return hasDigit(tok)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// trimToken trims surrounding whitespace and stray trailing punctuation from
// a captured token.
func trimToken(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,;:|")
}
