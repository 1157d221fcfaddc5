package model

// MatchMethod tags how a PO match candidate was produced.
type MatchMethod string

const (
	// MatchMethodExactRef means the invoice carried a literal PO number
	// present in the reference data.
	MatchMethodExactRef MatchMethod = "exact_ref"

	// MatchMethodFuzzyHybrid means the candidate came from combined
	// vector + supplier-name similarity.
	MatchMethodFuzzyHybrid MatchMethod = "fuzzy_hybrid"
)

// MatchCandidate is one ranked PO resolution candidate. Candidates are
// ordered by confidence descending; fuzzy confidence never exceeds 0.85 so
// an exact reference always outranks inference.
type MatchCandidate struct {
	PONumber   string      `json:"po_number"`
	Confidence float64     `json:"confidence"`
	Method     MatchMethod `json:"method"`
	Reasoning  string      `json:"reasoning"`
}
