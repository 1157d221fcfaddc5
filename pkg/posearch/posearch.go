// Package posearch provides fuzzy purchase-order lookup: a text query is
// embedded and matched against an in-memory index of PO documents, returning
// ranked (po_number, distance) pairs where lower distance is closer.
package posearch

import "context"

// Hit is one search result. Distance is 1 - cosine similarity, in [0, 2].
type Hit struct {
	PONumber string  `json:"po_number"`
	Distance float64 `json:"distance"`
}

// Client is the similarity search contract consumed by the matcher.
type Client interface {
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
}

// Embedder turns text into vectors. Document and query embedding are
// distinct to support asymmetric retrieval models.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
