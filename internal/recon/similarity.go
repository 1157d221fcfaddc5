package recon

import (
	"strings"

	"github.com/agext/levenshtein"
)

// lexicalRatio returns a normalized, case-insensitive similarity between two
// short text fields in [0, 1]. Used both for supplier-name scoring in the
// matcher and for line-item description alignment in the discrepancy engine.
func lexicalRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	return levenshtein.Similarity(a, b, nil)
}
