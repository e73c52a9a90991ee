package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLineEndingsAndWhitespace(t *testing.T) {
	got := normalize("Tienda XYZ\r\nTotal:\t $50.00   \r\n")
	assert.Equal(t, "Tienda XYZ\nTotal: $50.00", got)
}

func TestNormalizeMixedSpaceRuns(t *testing.T) {
	// Tabs and non-breaking spaces collapse together with regular spaces
	// into a single space, never leaving a double space behind.
	assert.Equal(t, "Total: $50.00", normalize("Total:\t $50.00"))
	assert.Equal(t, "Total: $50.00", normalize("Total:  $50.00"))
	assert.Equal(t, "IVA 7 %", normalize("IVA 7\t %"))
}

func TestNormalizeOCRDigitConfusions(t *testing.T) {
	// O, I and S in front of a digit are misread 0, 1, 5.
	assert.Equal(t, "100.00", normalize("1O0.00"))
	assert.Equal(t, "150.00", normalize("IS0.00"))
	// Letters not adjacent to a digit stay letters.
	assert.Equal(t, "ISLA SUR", normalize("ISLA SUR"))
}

func TestNormalizeDashesAndBlankRuns(t *testing.T) {
	got := normalize("a – b — c\n\n\n\n\nTotal")
	assert.Equal(t, "a - b - c\n\nTotal", got)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", normalize(""))
	assert.Equal(t, "", normalize("  \n \t\n"))
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := "Acme –– Corp\r\nSubtotal: $1O0.00  \nTax 7%\n\n\n\nTotal: $107.00"
	once := normalize(raw)
	assert.Equal(t, once, normalize(once))
}
