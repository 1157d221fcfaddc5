package model

// ReconRecord is the persisted result of one processed invoice, appended to
// the result log. The batch runner keys idempotency off SourceFile.
type ReconRecord struct {
	SourceFile        string            `json:"source_file"`
	InvoiceID         string            `json:"invoice_id"`
	ProcessingResults ProcessingResults `json:"processing_results"`
}

// ProcessingResults groups the outcome of the reconciliation pipeline.
type ProcessingResults struct {
	ExtractionConfidence float64         `json:"extraction_confidence"`
	ExtractedData        ExtractedData   `json:"extracted_data"`
	MatchingResults      MatchingResults `json:"matching_results"`
	Discrepancies        []Discrepancy   `json:"discrepancies"`
	RecommendedAction    Action          `json:"recommended_action"`
	AgentReasoning       string          `json:"agent_reasoning"`
	ExecutionTrace       []TraceStep     `json:"agent_execution_trace"`
}

// ExtractedData is the extraction snapshot embedded in the record.
type ExtractedData struct {
	Supplier    string     `json:"supplier"`
	POReference string     `json:"po_reference"`
	LineItems   []LineItem `json:"line_items"`
}

// MatchingResults is the matching snapshot embedded in the record.
// MatchedPO is null when the invoice was left unmatched.
type MatchingResults struct {
	MatchedPO            *string          `json:"matched_po"`
	MatchReasoning       string           `json:"match_reasoning"`
	CandidatesConsidered []MatchCandidate `json:"candidates_considered"`
}

// NewReconRecord serializes a terminal RunState into its persisted form.
func NewReconRecord(s RunState) ReconRecord {
	invoiceID := s.InvoiceID
	if invoiceID == "" {
		invoiceID = "UNKNOWN"
	}

	var matched *string
	if s.MatchedPO != "" {
		po := s.MatchedPO
		matched = &po
	}

	return ReconRecord{
		SourceFile: s.SourceFile,
		InvoiceID:  invoiceID,
		ProcessingResults: ProcessingResults{
			ExtractionConfidence: s.ExtractionConfidence,
			ExtractedData: ExtractedData{
				Supplier:    s.Supplier,
				POReference: s.POReference,
				LineItems:   s.Items,
			},
			MatchingResults: MatchingResults{
				MatchedPO:            matched,
				MatchReasoning:       s.MatchReasoning,
				CandidatesConsidered: s.Candidates,
			},
			Discrepancies:     s.Discrepancies,
			RecommendedAction: s.FinalAction,
			AgentReasoning:    s.FinalReasoning,
			ExecutionTrace:    s.Trace,
		},
	}
}
