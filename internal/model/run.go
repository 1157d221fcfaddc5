package model

// Action is the final disposition recommended for an invoice.
type Action string

const (
	ActionPending       Action = "pending"
	ActionAutoApprove   Action = "auto_approve"
	ActionFlagForReview Action = "flag_for_review"
	ActionEscalate      Action = "escalate_to_human"
)

// TraceStep is one entry in the run's audit log. Exactly one step is
// appended per orchestrator state visited, in execution order.
type TraceStep struct {
	Agent      string  `json:"agent"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
	Detail     string  `json:"detail"`
}

// RunState carries everything known about one invoice as it moves through
// the reconciliation state machine. Nodes receive it by value and return an
// updated copy; the orchestrator owns the evolving value and nothing writes
// to it concurrently.
type RunState struct {
	SourceFile string     `json:"source_file"`
	Quality    DocQuality `json:"quality"`

	RetryCount int         `json:"retry_count"`
	Trace      []TraceStep `json:"trace"`

	InvoiceID            string     `json:"invoice_id"`
	Supplier             string     `json:"supplier"`
	Date                 string     `json:"date"`
	POReference          string     `json:"po_reference"`
	Items                []LineItem `json:"items"`
	ExtractionConfidence float64    `json:"extraction_confidence"`
	ExtractionReasoning  string     `json:"extraction_reasoning"`

	VerificationFlags []string `json:"verification_flags"`
	MathVerified      bool     `json:"math_verified"`

	MatchedPO      string           `json:"matched_po"` // empty means unmatched
	Candidates     []MatchCandidate `json:"candidates"`
	MatchReasoning string           `json:"match_reasoning"`

	Discrepancies []Discrepancy `json:"discrepancies"`

	FinalAction    Action `json:"final_action"`
	FinalReasoning string `json:"final_reasoning"`
}

// NewRunState initializes the state for one document.
func NewRunState(sourceFile string, quality DocQuality) RunState {
	return RunState{
		SourceFile:  sourceFile,
		Quality:     quality,
		FinalAction: ActionPending,
	}
}

// WithTrace returns a copy of the state with one trace step appended.
func (s RunState) WithTrace(step TraceStep) RunState {
	trace := make([]TraceStep, len(s.Trace), len(s.Trace)+1)
	copy(trace, s.Trace)
	s.Trace = append(trace, step)
	return s
}

// HasHighSeverity reports whether any discrepancy is graded high.
func (s RunState) HasHighSeverity() bool {
	for _, d := range s.Discrepancies {
		if d.Severity == SeverityHigh {
			return true
		}
	}
	return false
}
