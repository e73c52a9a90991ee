package parser

import "regexp"

var (
	// Anchors that open the summary block of a receipt, English and Spanish.
	totalsAnchorRE = regexp.MustCompile(`(?i)\b(?:sub\s*-?\s*total|base\s+imponible|monto\s+gravado|desglose|resumen\s+de\s+(?:compra|cuenta)|importe\s+neto|total(?:es)?)\b`)
	// Terminators: payment-method or page-marker lines that follow the
	// summary block on most layouts.
	totalsEndRE = regexp.MustCompile(`(?i)\b(?:forma\s+de\s+pago|m[eé]todo\s+de\s+pago|payment\s+method|efectivo|tarjeta|cambio|cash|change|credit\s+card|debit|visa|mastercard|p[aá]gina\s+\d|page\s+\d)\b`)
)

// totalsSection returns the slice of the normalized text presumed to hold the
// summary fields (subtotal, tax, total), so the subtotal and tax extractors do
// not latch onto line-item prices. The section starts at the first totals
// anchor and ends before the first payment or page marker that follows it.
// With no anchor the full text is returned: extraction proceeds over the whole
// document rather than aborting.
func totalsSection(text string) string {
	loc := totalsAnchorRE.FindStringIndex(text)
	if loc == nil {
		return text
	}
	section := text[loc[0]:]
	// Look for a terminator after the anchor itself.
	if end := totalsEndRE.FindStringIndex(section[loc[1]-loc[0]:]); end != nil {
		section = section[:loc[1]-loc[0]+end[0]]
	}
	return section
}
