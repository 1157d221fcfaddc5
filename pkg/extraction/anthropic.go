package extraction

import (
	"context"
	"encoding/base64"
	"os"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const systemPrompt = `You are an expert invoice extraction agent. Extract structured data from this invoice document.

INSTRUCTIONS:
1. Extract supplier name, invoice date, PO reference, and line items.
2. If the document is rotated or scanned, use your vision capabilities to read it correctly.
3. Assign a confidence score (0.0-1.0) for every field.
4. If the PO reference is missing or unreadable, return null.

Respond with JSON only:
{
  "invoice_id": "string",
  "supplier_name": "string",
  "date": "string",
  "po_reference": "string or null",
  "items": [
    {"description": "string", "quantity": 0.0, "unit_price": 0.0, "line_total": 0.0, "confidence": 0.0}
  ],
  "overall_confidence": 0.0,
  "notes": "string"
}`

// AnthropicClient implements Client using the official anthropic-sdk-go,
// sending the PDF as a base64 document block.
type AnthropicClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(*AnthropicClient)

// WithModel overrides the extraction model.
func WithModel(model string) AnthropicOption {
	return func(c *AnthropicClient) { c.model = model }
}

// WithMaxTokens overrides the response token budget.
func WithMaxTokens(n int64) AnthropicOption {
	return func(c *AnthropicClient) { c.maxTokens = n }
}

// WithRequestsPerMinute throttles outbound calls. n <= 0 disables the
// limiter.
func WithRequestsPerMinute(n int) AnthropicOption {
	return func(c *AnthropicClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60.0), 1)
		}
	}
}

// NewAnthropicClient creates an extraction client backed by the SDK.
func NewAnthropicClient(apiKey string, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     "claude-haiku-4-5-20251001",
		maxTokens: 4096,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*AnthropicClient)(nil)

// Extract reads the document, sends it to the model, and parses the
// structured reply.
func (c *AnthropicClient) Extract(ctx context.Context, documentPath string) (*Result, error) {
	data, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, eris.Wrapf(err, "extraction: read document %s", documentPath)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "extraction: rate limiter")
		}
	}

	docBlock := sdk.ContentBlockParamUnion{
		OfDocument: &sdk.DocumentBlockParam{
			Source: sdk.DocumentBlockParamSourceUnion{
				OfBase64: &sdk.Base64PDFSourceParam{
					Data: base64.StdEncoding.EncodeToString(data),
				},
			},
		},
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(docBlock, sdk.NewTextBlock("Extract the invoice data.")),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "extraction: create message")
	}

	var text string
	for _, block := range msg.Content {
		text += block.Text
	}

	result, err := ParseResult(text)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("extraction: document extracted",
		zap.String("document", documentPath),
		zap.String("invoice_id", result.InvoiceID),
		zap.Int("line_items", len(result.LineItems)),
		zap.Float64("confidence", result.OverallConfidence),
	)

	return result, nil
}
