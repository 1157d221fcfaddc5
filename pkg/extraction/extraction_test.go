package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = `{
  "invoice_id": "INV-001",
  "supplier_name": "Acme Industrial Supply",
  "date": "2026-08-01",
  "po_reference": "PO-100",
  "items": [
    {"description": "Steel bolts M8", "quantity": 500, "unit_price": 0.25, "line_total": 125.0, "confidence": 0.98}
  ],
  "overall_confidence": 0.97,
  "notes": "Clean digital document."
}`

func TestParseResult(t *testing.T) {
	res, err := ParseResult(sampleReply)
	require.NoError(t, err)

	assert.Equal(t, "INV-001", res.InvoiceID)
	assert.Equal(t, "Acme Industrial Supply", res.SupplierName)
	assert.Equal(t, "PO-100", res.POReference)
	require.Len(t, res.LineItems, 1)
	assert.Equal(t, 0.98, res.LineItems[0].Confidence)
	assert.Equal(t, 0.97, res.OverallConfidence)
}

func TestParseResultStripsCodeFences(t *testing.T) {
	res, err := ParseResult("```json\n" + sampleReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "INV-001", res.InvoiceID)

	res, err = ParseResult("```\n" + sampleReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "INV-001", res.InvoiceID)
}

func TestParseResultNullPOReference(t *testing.T) {
	res, err := ParseResult(`{"invoice_id": "INV-002", "po_reference": null, "overall_confidence": 0.9}`)
	require.NoError(t, err)
	assert.Empty(t, res.POReference)

	res, err = ParseResult(`{"invoice_id": "INV-003", "overall_confidence": 0.9}`)
	require.NoError(t, err)
	assert.Empty(t, res.POReference)
}

func TestParseResultTrimsPOReference(t *testing.T) {
	res, err := ParseResult(`{"invoice_id": "INV-004", "po_reference": "  PO-100  "}`)
	require.NoError(t, err)
	assert.Equal(t, "PO-100", res.POReference)
}

func TestParseResultDefaultsLineItemConfidence(t *testing.T) {
	res, err := ParseResult(`{
		"invoice_id": "INV-005",
		"items": [{"description": "Widget", "quantity": 1, "unit_price": 2, "line_total": 2}]
	}`)
	require.NoError(t, err)
	require.Len(t, res.LineItems, 1)
	assert.Equal(t, 0.9, res.LineItems[0].Confidence)
}

func TestParseResultRejectsNonJSON(t *testing.T) {
	_, err := ParseResult("I could not read the document.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse model output")
}
