// Package extraction reads invoice documents through a vision/language
// model and returns structured candidate fields with confidence scores.
// Consumers treat the output as noisy: confidence capping, verification,
// and retries are the caller's concern.
package extraction

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// LineItem is one extracted invoice line.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
	Confidence  float64 `json:"confidence"`
}

// Result is the structured output for one document.
type Result struct {
	InvoiceID         string     `json:"invoice_id"`
	SupplierName      string     `json:"supplier_name"`
	Date              string     `json:"date"`
	POReference       string     `json:"po_reference"`
	LineItems         []LineItem `json:"items"`
	OverallConfidence float64    `json:"overall_confidence"`
	Notes             string     `json:"notes"`
}

// Client is the extraction contract. Extract blocks until the model
// responds or the context is cancelled.
type Client interface {
	Extract(ctx context.Context, documentPath string) (*Result, error)
}

// ParseResult decodes the model's JSON reply into a Result. Markdown code
// fences around the JSON body are stripped first.
func ParseResult(text string) (*Result, error) {
	cleaned := cleanJSON(text)

	// po_reference may come back as JSON null; decode through a shadow
	// struct with a pointer so null and "" both map to an absent reference.
	var raw struct {
		InvoiceID         string     `json:"invoice_id"`
		SupplierName      string     `json:"supplier_name"`
		Date              string     `json:"date"`
		POReference       *string    `json:"po_reference"`
		LineItems         []LineItem `json:"items"`
		OverallConfidence float64    `json:"overall_confidence"`
		Notes             string     `json:"notes"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "extraction: parse model output")
	}

	res := &Result{
		InvoiceID:         raw.InvoiceID,
		SupplierName:      raw.SupplierName,
		Date:              raw.Date,
		LineItems:         raw.LineItems,
		OverallConfidence: raw.OverallConfidence,
		Notes:             raw.Notes,
	}
	if raw.POReference != nil {
		res.POReference = strings.TrimSpace(*raw.POReference)
	}
	for i := range res.LineItems {
		if res.LineItems[i].Confidence == 0 {
			res.LineItems[i].Confidence = 0.9
		}
	}
	return res, nil
}

// cleanJSON strips markdown code fences the model sometimes wraps around
// JSON output.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
