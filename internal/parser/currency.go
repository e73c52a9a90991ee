package parser

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// errNotANumber is returned when a token carries no parseable numeric value.
// Callers must check it before assigning a field; it never leaks into a record.
var errNotANumber = errors.New("not a number")

var (
	// dot-thousands, comma-decimal shape: 1.234,56
	reEuroShape = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+,\d{1,2}$`)
	// comma used as decimal point: 12,5 or 12,50
	reCommaDecimal = regexp.MustCompile(`,\d{1,2}$`)
)

// parseCurrency converts one numeric substring with ambiguous thousands and
// decimal separators into a float. It resolves the European (1.234,56) and
// US (1,234.56) shapes before handing the cleaned string to strconv.
func parseCurrency(token string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, token)
	if cleaned == "" {
		return 0, errNotANumber
	}

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")
	switch {
	case hasDot && hasComma:
		if reEuroShape.MatchString(cleaned) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		if strings.Count(cleaned, ",") == 1 && reCommaDecimal.MatchString(cleaned) {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errNotANumber
	}
	return v, nil
}

// round2 rounds to 2 decimal places. Applied immediately after every monetary
// derivation so floating-point drift cannot compound across reconciliation steps.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
