package recon

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/pkg/posearch"
)

// Matcher resolves an extracted invoice to zero or one purchase order.
// Stage 1 accepts a literal PO reference found in the registry; stage 2
// falls back to hybrid vector + supplier-name search.
type Matcher struct {
	registry *model.PORegistry
	search   posearch.Client
	cfg      config.MatcherConfig
}

// NewMatcher creates a matcher over the given registry and search client.
func NewMatcher(registry *model.PORegistry, search posearch.Client, cfg config.MatcherConfig) *Matcher {
	return &Matcher{registry: registry, search: search, cfg: cfg}
}

// MatchOutcome is the matcher's verdict for one invoice. MatchedPO is empty
// when the invoice is left unmatched, which is a valid outcome rather than
// an error.
type MatchOutcome struct {
	MatchedPO  string
	Candidates []model.MatchCandidate
	Reasoning  string
}

// Match runs the two-stage resolution. An explicit reference present in the
// registry short-circuits fuzzy search entirely: exact evidence dominates.
func (m *Matcher) Match(ctx context.Context, supplier, poRef string, items []model.LineItem) MatchOutcome {
	if poRef != "" {
		if _, ok := m.registry.Get(poRef); ok {
			candidate := model.MatchCandidate{
				PONumber:   poRef,
				Confidence: m.cfg.ExactConfidence,
				Method:     model.MatchMethodExactRef,
				Reasoning:  fmt.Sprintf("Identified explicit PO reference %s.", poRef),
			}
			return MatchOutcome{
				MatchedPO:  poRef,
				Candidates: []model.MatchCandidate{candidate},
				Reasoning:  candidate.Reasoning,
			}
		}
	}

	return m.fuzzyMatch(ctx, supplier, items)
}

func (m *Matcher) fuzzyMatch(ctx context.Context, supplier string, items []model.LineItem) MatchOutcome {
	query := buildQuery(supplier, items)

	hits, err := m.search.Search(ctx, query, m.cfg.TopK)
	if err != nil {
		// Search backend failure is surfaced as an unmatched invoice, not a
		// run-fatal error; resolution escalates it downstream.
		zap.L().Warn("match: similarity search failed", zap.Error(err))
		return MatchOutcome{Reasoning: "Similarity search unavailable: " + err.Error()}
	}

	type scored struct {
		candidate model.MatchCandidate
		score     float64
	}
	var ranked []scored

	for _, hit := range hits {
		if hit.Distance > m.cfg.DistanceThreshold {
			continue
		}
		po, ok := m.registry.Get(hit.PONumber)
		if !ok {
			continue
		}

		vecSim := clamp01(1 - hit.Distance)
		supplierSim := lexicalRatio(supplier, po.Supplier)
		score := math.Min(
			m.cfg.VectorWeight*vecSim+m.cfg.SupplierWeight*supplierSim,
			m.cfg.FuzzyCap,
		)
		if score <= m.cfg.CandidateFloor {
			continue
		}

		ranked = append(ranked, scored{
			candidate: model.MatchCandidate{
				PONumber:   hit.PONumber,
				Confidence: math.Round(score*100) / 100,
				Method:     model.MatchMethodFuzzyHybrid,
				Reasoning:  fmt.Sprintf("Supplier: %s (score: %.2f)", po.Supplier, score),
			},
			score: score,
		})
	}

	// Stable sort: ties keep the original vector-search order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > m.cfg.TopK {
		ranked = ranked[:m.cfg.TopK]
	}

	candidates := make([]model.MatchCandidate, 0, len(ranked))
	for _, r := range ranked {
		candidates = append(candidates, r.candidate)
	}

	if len(candidates) == 0 {
		return MatchOutcome{Reasoning: "No viable PO candidates found."}
	}

	best := candidates[0]
	if best.Confidence > m.cfg.AcceptThreshold {
		alternatives := make([]string, 0, len(candidates)-1)
		for _, c := range candidates[1:] {
			alternatives = append(alternatives, c.PONumber)
		}
		return MatchOutcome{
			MatchedPO:  best.PONumber,
			Candidates: candidates,
			Reasoning: fmt.Sprintf("Hypothesized %s as best match. Alternatives considered: [%s]",
				best.PONumber, strings.Join(alternatives, ", ")),
		}
	}

	return MatchOutcome{
		Candidates: candidates,
		Reasoning:  "Top candidates scored below the acceptance threshold.",
	}
}

// buildQuery renders the invoice as the fuzzy search text, mirroring the
// shape of the indexed PO documents.
func buildQuery(supplier string, items []model.LineItem) string {
	var parts []string
	if supplier != "" {
		parts = append(parts, "Supplier: "+supplier)
	}
	if len(items) > 0 {
		descs := make([]string, 0, len(items))
		for _, item := range items {
			descs = append(descs, item.Description)
		}
		parts = append(parts, "Items: "+strings.Join(descs, ", "))
	}
	return strings.Join(parts, ". ")
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
