package parser

import "regexp"

// amountRule is one rung of a numeric extraction ladder: a pattern plus the
// capture-selection rule that turns its submatches into a value. Rules are
// tried top to bottom and the first one that matches, parses and passes the
// field validator wins; later rules are deliberately looser fallbacks, so
// order is part of the policy.
type amountRule struct {
	re   *regexp.Regexp
	take func(m []string) (float64, error)
}

// takeFirst parses the first capture group.
func takeFirst(m []string) (float64, error) {
	return parseCurrency(m[1])
}

// takeSmaller parses both capture groups and keeps the smaller value. Used by
// two-number tax lines, where the tax is presumed smaller than the adjoining
// total.
func takeSmaller(m []string) (float64, error) {
	a, errA := parseCurrency(m[1])
	b, errB := parseCurrency(m[2])
	switch {
	case errA != nil && errB != nil:
		return 0, errNotANumber
	case errA != nil:
		return b, nil
	case errB != nil:
		return a, nil
	case b < a:
		return b, nil
	}
	return a, nil
}

// takeUnlessPercent parses the first capture group but refuses the match when
// the second group caught a trailing percent sign: the number was a rate, not
// an amount.
func takeUnlessPercent(m []string) (float64, error) {
	if len(m) > 2 && m[2] != "" {
		return 0, errNotANumber
	}
	return parseCurrency(m[1])
}

// scanAmount walks an amount ladder over text. A rule that matches but fails
// to parse or validate does not stop the ladder.
func scanAmount(text string, rules []amountRule, accept func(float64) bool) (float64, bool) {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := r.take(m)
		if err != nil {
			continue
		}
		if accept != nil && !accept(v) {
			continue
		}
		return v, true
	}
	return 0, false
}

// textRule is one rung of a string extraction ladder.
type textRule struct {
	re *regexp.Regexp
}

// scanText walks a text ladder, returning the first trimmed capture that the
// validator accepts.
func scanText(text string, rules []textRule, accept func(string) bool) (string, bool) {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := trimToken(m[1])
		if v == "" {
			continue
		}
		if accept != nil && !accept(v) {
			continue
		}
		return v, true
	}
	return "", false
}
