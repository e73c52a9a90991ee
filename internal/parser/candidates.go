package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// moneyCandidateRE matches an optional currency marker followed by a
// grouped-digit number: groups of 1-3 digits split by dot, comma or space,
// with an optional 1-2 digit fraction.
var moneyCandidateRE = regexp.MustCompile(`(?i)(?:\$|USD|EUR|€|GBP|£)?\s*\d{1,3}(?:[., ]\d{1,3})*(?:[.,]\d{1,2})?`)

// moneyCandidates is the value-ranked list of money-like tokens found in the
// raw text, sorted descending. It is a fallback signal only: rank 0 stands in
// for the total and rank 1 for the subtotal when labeled extraction fails.
type moneyCandidates []float64

// scanMoneyCandidates runs over the raw (non-normalized) text so that OCR
// repair cannot invent or destroy digit groups before ranking.
func scanMoneyCandidates(raw string) moneyCandidates {
	matches := moneyCandidateRE.FindAllString(raw, -1)
	values := make(moneyCandidates, 0, len(matches))
	for _, m := range matches {
		// Simplified parse for ranking purposes: commas and spaces are
		// always grouping, the dot is always the decimal point.
		cleaned := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' || r == '.' {
				return r
			}
			return -1
		}, strings.ReplaceAll(m, ",", ""))
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || v <= 0 {
			continue
		}
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	return values
}

// fallbackTotal returns the largest scanned value.
func (c moneyCandidates) fallbackTotal() (float64, bool) {
	if len(c) == 0 {
		return 0, false
	}
	return c[0], true
}

// fallbackSubtotal returns the second-largest scanned value.
func (c moneyCandidates) fallbackSubtotal() (float64, bool) {
	if len(c) < 2 {
		return 0, false
	}
	return c[1], true
}
