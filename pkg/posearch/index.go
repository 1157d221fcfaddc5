package posearch

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
)

// Index is a brute-force cosine-similarity index over PO documents.
// Vectors are normalized at insert so search is a dot product. At catalog
// sizes (hundreds to low thousands of POs) exact brute force is faster than
// maintaining an ANN structure, and results are exact.
type Index struct {
	embedder Embedder

	mu      sync.RWMutex
	vectors map[string][]float32 // po_number -> normalized embedding
}

var _ Client = (*Index)(nil)

// NewIndex creates an empty index backed by the given embedder.
func NewIndex(embedder Embedder) *Index {
	return &Index{
		embedder: embedder,
		vectors:  make(map[string][]float32),
	}
}

// Add embeds one PO document and inserts it. Re-adding a PO number
// replaces its vector.
func (ix *Index) Add(ctx context.Context, poNumber, text string) error {
	vec, err := ix.embedder.EmbedDocument(ctx, text)
	if err != nil {
		return eris.Wrapf(err, "posearch: embed document %s", poNumber)
	}
	normalize(vec)

	ix.mu.Lock()
	ix.vectors[poNumber] = vec
	ix.mu.Unlock()
	return nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Search embeds the query and returns up to topK hits ordered by ascending
// distance (closest first). Ties are broken by PO number for determinism.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		return nil, nil
	}

	qv, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "posearch: embed query")
	}
	normalize(qv)

	ix.mu.RLock()
	hits := make([]Hit, 0, len(ix.vectors))
	for id, vec := range ix.vectors {
		hits = append(hits, Hit{PONumber: id, Distance: 1 - dot(qv, vec)})
	}
	ix.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].PONumber < hits[j].PONumber
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
