package posearch

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// HashEmbedder is a deterministic, dependency-free embedder using hashed
// bag-of-tokens (feature hashing). It needs no network or model weights, so
// it serves offline runs and tests. Quality is well below a learned
// embedding model but token overlap between an invoice's supplier/items and
// a PO document still ranks the right catalog entries first.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hashing embedder with the given dimensionality.
// Dims <= 0 defaults to 256.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashEmbedder{dims: dims}
}

var _ Embedder = (*HashEmbedder)(nil)

// EmbedDocument embeds a document text.
func (e *HashEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// EmbedQuery embeds a query. Hashing is symmetric, so queries and documents
// share the same feature space.
func (e *HashEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.embed(query), nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		idx := int(sum) % e.dims
		if idx < 0 {
			idx += e.dims
		}
		// Sign bit from the hash keeps collisions from always adding up.
		if sum&0x80000000 != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
