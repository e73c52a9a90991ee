package parser

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reOCRDigits  = regexp.MustCompile(`[OIS]+[0-9]`)
	reHardSpace  = regexp.MustCompile("[  \t]+")
	reDashes     = regexp.MustCompile("[–—]")
	reTrailingWS = regexp.MustCompile(`[ \t]+\n`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// ocrConfusions maps letters that tesseract commonly misreads for digits.
var ocrConfusions = strings.NewReplacer("O", "0", "I", "1", "S", "5")

// normalize cleans whitespace and fixes common OCR artifacts before any
// digit-sensitive matching runs. Every step is a pure substitution: unmatched
// input passes through unchanged, and the function never fails.
func normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	// Letters O/I/S directly in front of a digit are OCR misreads of 0/1/5
	// ("1O0.00" -> "100.00"). Only runs that touch a digit are rewritten.
	s = reOCRDigits.ReplaceAllStringFunc(s, ocrConfusions.Replace)
	s = reHardSpace.ReplaceAllString(s, " ")
	s = reDashes.ReplaceAllString(s, "-")
	s = reTrailingWS.ReplaceAllString(s, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
