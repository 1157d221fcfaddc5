package posearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434/api/embed"
	defaultOllamaModel   = "nomic-embed-text"
)

// OllamaEmbedder embeds text via an Ollama-compatible /api/embed endpoint.
// It uses nomic task prefixes ("search_document: " for indexing,
// "search_query: " for queries) for asymmetric retrieval.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
}

// OllamaOption configures an OllamaEmbedder.
type OllamaOption func(*OllamaEmbedder)

// WithOllamaBaseURL sets the inference server URL.
func WithOllamaBaseURL(url string) OllamaOption {
	return func(e *OllamaEmbedder) { e.baseURL = url }
}

// WithOllamaModel sets the embedding model name.
func WithOllamaModel(model string) OllamaOption {
	return func(e *OllamaEmbedder) { e.model = model }
}

// NewOllamaEmbedder creates an embedder talking to an Ollama-compatible
// HTTP endpoint. Defaults to localhost:11434 with nomic-embed-text.
func NewOllamaEmbedder(opts ...OllamaOption) *OllamaEmbedder {
	e := &OllamaEmbedder{
		baseURL: defaultOllamaBaseURL,
		model:   defaultOllamaModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Embedder = (*OllamaEmbedder)(nil)

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedDocument embeds a text for storage/indexing.
func (e *OllamaEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, "search_document: "+text)
}

// EmbedQuery embeds a search query.
func (e *OllamaEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.embed(ctx, "search_query: "+query)
}

func (e *OllamaEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, eris.Wrap(err, "posearch: marshal embed request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "posearch: build embed request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "posearch: embed request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("posearch: embed status %d: %s", resp.StatusCode, string(b))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "posearch: decode embed response")
	}
	if len(out.Embeddings) == 0 || len(out.Embeddings[0]) == 0 {
		return nil, eris.New("posearch: empty embedding in response")
	}
	return out.Embeddings[0], nil
}
