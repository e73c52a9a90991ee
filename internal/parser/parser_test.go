package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePercentOnlyReceipt(t *testing.T) {
	raw := "Acme Corp\nSubtotal: $100.00\nTax 7%\nTotal: $107.00"
	rec := New().Parse(raw)

	assert.Equal(t, raw, rec.RawText)
	assert.Equal(t, "Acme Corp", rec.VendorName)
	require.NotNil(t, rec.SubtotalAmount)
	assert.Equal(t, 100.0, *rec.SubtotalAmount)
	require.NotNil(t, rec.TaxPercentage)
	assert.Equal(t, 7.0, *rec.TaxPercentage)
	require.NotNil(t, rec.TaxAmount)
	assert.Equal(t, 7.0, *rec.TaxAmount)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 107.0, *rec.Amount)
}

func TestParseZeroTaxReceipt(t *testing.T) {
	raw := "Tienda XYZ\nITBMS 0.00\nTotal: $50.00"
	rec := New().Parse(raw)

	assert.Equal(t, "Tienda XYZ", rec.VendorName)
	require.NotNil(t, rec.TaxAmount)
	assert.Equal(t, 0.0, *rec.TaxAmount)
	require.NotNil(t, rec.TaxPercentage)
	assert.Equal(t, 0.0, *rec.TaxPercentage)
	require.NotNil(t, rec.SubtotalAmount)
	assert.Equal(t, 50.0, *rec.SubtotalAmount)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 50.0, *rec.Amount)
}

func TestParseInconsistentTaxGetsRewritten(t *testing.T) {
	raw := "Subtotal: $100.00\nTax: $5.00\nTotal: $110.00"
	rec := New().Parse(raw)

	// Subtotal and total outweigh the extracted tax.
	require.NotNil(t, rec.TaxAmount)
	assert.Equal(t, 10.0, *rec.TaxAmount)
	require.NotNil(t, rec.TaxPercentage)
	assert.Equal(t, 10.0, *rec.TaxPercentage)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 110.0, *rec.Amount)
}

func TestParseTotalOnlyReceipt(t *testing.T) {
	rec := New().Parse("Total $88.00")

	require.NotNil(t, rec.Amount)
	assert.Equal(t, 88.0, *rec.Amount)
	require.NotNil(t, rec.SubtotalAmount)
	assert.Equal(t, 88.0, *rec.SubtotalAmount)
	assert.Nil(t, rec.TaxAmount)
	assert.Nil(t, rec.TaxPercentage)
}

func TestParseSpanishInvoice(t *testing.T) {
	raw := "Panadería La Espiga\nFactura No. A-2024-118\nFecha: 12/03/2024\n" +
		"Base imponible 100,00\nIVA 7,00\nTotal 107,00"
	rec := New().Parse(raw)

	assert.Equal(t, "Panadería La Espiga", rec.VendorName)
	assert.Equal(t, "A-2024-118", rec.InvoiceNumber)
	assert.Equal(t, "12/03/2024", rec.Date)
	require.NotNil(t, rec.SubtotalAmount)
	assert.Equal(t, 100.0, *rec.SubtotalAmount)
	require.NotNil(t, rec.TaxAmount)
	assert.Equal(t, 7.0, *rec.TaxAmount)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 107.0, *rec.Amount)
	require.NotNil(t, rec.TaxPercentage)
	assert.Equal(t, 7.0, *rec.TaxPercentage)
}

func TestParseEmptyInput(t *testing.T) {
	rec := New().Parse("")

	assert.Equal(t, "", rec.RawText)
	assert.Nil(t, rec.Amount)
	assert.Nil(t, rec.SubtotalAmount)
	assert.Nil(t, rec.TaxAmount)
	assert.Nil(t, rec.TaxPercentage)
	assert.Empty(t, rec.VendorName)
	assert.Empty(t, rec.Date)
	assert.Empty(t, rec.InvoiceNumber)
}

func TestParseDeterministic(t *testing.T) {
	raw := "Acme Corp\nSubtotal: $100.00\nTax 7%\nTotal: $107.00"
	p := New()
	first := p.Parse(raw)
	second := p.Parse(raw)
	assert.Equal(t, first, second)
}

func TestParseClosureHolds(t *testing.T) {
	// Whenever all three monetary fields are present they must close under
	// total = subtotal + tax within a cent of rounding.
	inputs := []string{
		"Acme Corp\nSubtotal: $100.00\nTax 7%\nTotal: $107.00",
		"Tienda XYZ\nITBMS 0.00\nTotal: $50.00",
		"Subtotal: $100.00\nTax: $5.00\nTotal: $110.00",
		"Sub-total 15.50\nTax 1.09\nTotal 16.59",
		"Base imponible 250,00\nIVA 17,50\nTotal 267,50",
	}
	for _, raw := range inputs {
		rec := New().Parse(raw)
		require.NotNil(t, rec.Amount, raw)
		require.NotNil(t, rec.SubtotalAmount, raw)
		require.NotNil(t, rec.TaxAmount, raw)
		assert.InDelta(t, *rec.Amount, *rec.SubtotalAmount+*rec.TaxAmount, 0.011, raw)
	}
}
