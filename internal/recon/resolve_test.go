package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/recon-cli/internal/model"
)

func highSeverityDiscrepancy() model.Discrepancy {
	return model.Discrepancy{
		Type:     model.DiscrepancyPriceMismatch,
		Severity: model.SeverityHigh,
		Details:  "Unit price deviation of 20.0% (0.30 vs 0.25) exceeds standard tolerance.",
	}
}

func TestResolveLowConfidenceEscalates(t *testing.T) {
	state := model.RunState{
		ExtractionConfidence: 0.5,
		MatchedPO:            "PO-100",
		MathVerified:         true,
	}

	action, reason := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionEscalate, action)
	assert.Contains(t, reason, "Low extraction confidence (0.50)")
}

func TestResolveLowConfidenceWinsOverHighSeverity(t *testing.T) {
	state := model.RunState{
		ExtractionConfidence: 0.5,
		Discrepancies:        []model.Discrepancy{highSeverityDiscrepancy()},
	}

	action, reason := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionEscalate, action)
	assert.Contains(t, reason, "Low extraction confidence")
	assert.NotContains(t, reason, "CRITICAL")
}

func TestResolveHighSeverityEscalates(t *testing.T) {
	state := model.RunState{
		ExtractionConfidence: 0.95,
		MatchedPO:            "PO-100",
		MathVerified:         true,
		Discrepancies:        []model.Discrepancy{highSeverityDiscrepancy()},
	}

	action, reason := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionEscalate, action)
	assert.Contains(t, reason, "CRITICAL: Unit price deviation")
}

func TestResolveDiscrepanciesFlagForReview(t *testing.T) {
	state := model.RunState{
		ExtractionConfidence: 0.95,
		MatchedPO:            "PO-100",
		MathVerified:         true,
		Discrepancies: []model.Discrepancy{
			{Type: model.DiscrepancyPriceMismatch, Severity: model.SeverityMedium, InvoiceValue: 0.275, POValue: 0.25},
			{Type: model.DiscrepancyMissingPO, Severity: model.SeverityMedium, POValue: "PO-100"},
			{Type: model.DiscrepancyQtyMismatch, Severity: model.SeverityMedium, InvoiceValue: 600.0, POValue: 500.0},
			{Type: model.DiscrepancyItemNotFound, Severity: model.SeverityMedium, InvoiceValue: "Lubricant"},
		},
	}

	action, reason := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionFlagForReview, action)
	assert.Contains(t, reason, "Price variance detected")
	assert.Contains(t, reason, "PO inferred")
	assert.Contains(t, reason, "Quantity difference")
	assert.Contains(t, reason, "not present on the purchase order")
}

func TestResolveCleanMatchAutoApproves(t *testing.T) {
	state := model.RunState{
		ExtractionConfidence: 0.97,
		MatchedPO:            "PO-100",
		MathVerified:         true,
	}

	action, reason := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionAutoApprove, action)
	assert.Contains(t, reason, "Clean three-way match")
}

func TestResolveUnmatchedEscalates(t *testing.T) {
	state := model.RunState{
		ExtractionConfidence: 0.95,
		MatchedPO:            "",
		MathVerified:         true,
	}

	action, reason := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionEscalate, action)
	assert.Contains(t, reason, "System uncertainty")
}

func TestResolveUnverifiedMathEscalates(t *testing.T) {
	state := model.RunState{
		ExtractionConfidence: 0.95,
		MatchedPO:            "PO-100",
		MathVerified:         false,
	}

	action, _ := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionEscalate, action)
}

func TestResolveMidConfidenceWithNoDiscrepanciesStillGated(t *testing.T) {
	// 0.70 is below the floor even without any discrepancy evidence.
	state := model.RunState{
		ExtractionConfidence: 0.70,
		MatchedPO:            "PO-100",
		MathVerified:         true,
	}

	action, reason := Resolve(state, testConfig().Policy)
	assert.Equal(t, model.ActionEscalate, action)
	assert.Contains(t, reason, "Low extraction confidence (0.70)")
}

func TestResolveConfidenceIsCappedBeforeGate(t *testing.T) {
	// Raising the floor above the cap shows the cap is applied first: even a
	// perfect extraction cannot clear the gate.
	cfg := testConfig().Policy
	cfg.ConfidenceFloor = 0.96

	state := model.RunState{
		ExtractionConfidence: 1.0,
		MatchedPO:            "PO-100",
		MathVerified:         true,
	}

	action, reason := Resolve(state, cfg)
	assert.Equal(t, model.ActionEscalate, action)
	assert.Contains(t, reason, "(0.95)")
}
