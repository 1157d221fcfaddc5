package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terminalState() RunState {
	return RunState{
		SourceFile:           "inv_001.pdf",
		Quality:              DocQualityClean,
		InvoiceID:            "INV-001",
		Supplier:             "Acme Industrial Supply",
		POReference:          "PO-100",
		Items:                []LineItem{{Description: "Steel bolts M8", Quantity: 500, UnitPrice: 0.25, LineTotal: 125}},
		ExtractionConfidence: 0.97,
		MathVerified:         true,
		MatchedPO:            "PO-100",
		Candidates: []MatchCandidate{
			{PONumber: "PO-100", Confidence: 0.95, Method: MatchMethodExactRef},
		},
		Discrepancies: []Discrepancy{
			{Type: DiscrepancyQtyMismatch, Severity: SeverityMedium, Field: "line_item_0_qty"},
		},
		FinalAction:    ActionFlagForReview,
		FinalReasoning: "Quantity difference (600 vs 500).",
		Trace: []TraceStep{
			{Agent: "Document Intelligence", Status: "Success", Confidence: 0.97},
			{Agent: "Resolution Agent", Status: "Complete", Confidence: 1.0},
		},
	}
}

func TestNewReconRecord(t *testing.T) {
	record := NewReconRecord(terminalState())

	assert.Equal(t, "inv_001.pdf", record.SourceFile)
	assert.Equal(t, "INV-001", record.InvoiceID)
	assert.Equal(t, ActionFlagForReview, record.ProcessingResults.RecommendedAction)
	assert.Len(t, record.ProcessingResults.Discrepancies, 1)
	assert.Len(t, record.ProcessingResults.ExecutionTrace, 2)

	require.NotNil(t, record.ProcessingResults.MatchingResults.MatchedPO)
	assert.Equal(t, "PO-100", *record.ProcessingResults.MatchingResults.MatchedPO)
}

func TestNewReconRecordUnmatchedPOIsNull(t *testing.T) {
	state := terminalState()
	state.MatchedPO = ""

	record := NewReconRecord(state)
	assert.Nil(t, record.ProcessingResults.MatchingResults.MatchedPO)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"matched_po":null`)
}

func TestNewReconRecordUnknownInvoiceID(t *testing.T) {
	state := terminalState()
	state.InvoiceID = ""

	record := NewReconRecord(state)
	assert.Equal(t, "UNKNOWN", record.InvoiceID)
}

func TestReconRecordJSONRoundTrip(t *testing.T) {
	record := NewReconRecord(terminalState())

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded ReconRecord
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, record.SourceFile, decoded.SourceFile)
	assert.Equal(t, record.InvoiceID, decoded.InvoiceID)
	assert.Equal(t, record.ProcessingResults.RecommendedAction, decoded.ProcessingResults.RecommendedAction)
	assert.Len(t, decoded.ProcessingResults.Discrepancies, 1)
	assert.Equal(t, DiscrepancyQtyMismatch, decoded.ProcessingResults.Discrepancies[0].Type)
	assert.Len(t, decoded.ProcessingResults.ExecutionTrace, 2)
	require.NotNil(t, decoded.ProcessingResults.MatchingResults.MatchedPO)
	assert.Equal(t, "PO-100", *decoded.ProcessingResults.MatchingResults.MatchedPO)

	// The trace serializes under the audited key.
	assert.Contains(t, string(data), `"agent_execution_trace"`)
}
