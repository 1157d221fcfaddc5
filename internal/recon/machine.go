package recon

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/resilience"
	"github.com/sells-group/recon-cli/pkg/extraction"
	"github.com/sells-group/recon-cli/pkg/posearch"
)

// Trace agent names, stable across runs: the audit log is part of the
// persisted record format.
const (
	agentExtractor    = "Document Intelligence"
	agentVerifier     = "Extraction Verifier"
	agentOrchestrator = "Orchestrator"
	agentMatcher      = "Matching Agent"
	agentDetector     = "Discrepancy Detector"
	agentResolver     = "Resolution Agent"
)

// stateID identifies a machine state.
type stateID string

const (
	stateExtract     stateID = "extract"
	stateVerify      stateID = "verify"
	stateRetry       stateID = "retry_logic"
	stateMatch       stateID = "match"
	stateDiscrepancy stateID = "discrepancy"
	stateResolve     stateID = "resolve"
	stateEnd         stateID = "end"
)

// Document is one invoice to reconcile.
type Document struct {
	Path    string
	Quality model.DocQuality
}

// VerifyFunc checks extracted line items for internal consistency. The
// default recomputes line arithmetic; tests inject failing implementations
// to exercise the retry edge.
type VerifyFunc func(items []model.LineItem) (flags []string, passed bool)

// Machine is the reconciliation orchestrator: a bounded, strictly
// sequential state machine. Nodes receive the RunState by value and return
// an updated copy; the single conditional edge is decided by a pure
// predicate that never mutates state.
type Machine struct {
	cfg      *config.Config
	extract  extraction.Client
	matcher  *Matcher
	detector *Detector
	verify   VerifyFunc
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithVerify replaces the verification gate implementation.
func WithVerify(v VerifyFunc) MachineOption {
	return func(m *Machine) { m.verify = v }
}

// NewMachine wires the orchestrator with its collaborators.
func NewMachine(cfg *config.Config, extractor extraction.Client, search posearch.Client, registry *model.PORegistry, opts ...MachineOption) *Machine {
	m := &Machine{
		cfg:      cfg,
		extract:  extractor,
		matcher:  NewMatcher(registry, search, cfg.Matcher),
		detector: NewDetector(registry, cfg.Discrepancy),
	}
	m.verify = func(items []model.LineItem) ([]string, bool) {
		return VerifyMath(items, cfg.Verify.MathTolerance)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run drives one document from extract to the terminal state. It always
// reaches a terminal action: extraction and matching failures become
// evidence for the resolution policy rather than aborting the run.
func (m *Machine) Run(ctx context.Context, doc Document) model.RunState {
	log := zap.L().With(zap.String("document", doc.Path))
	log.Info("recon: starting run")

	state := model.NewRunState(filepath.Base(doc.Path), doc.Quality)

	cur := stateExtract
	for cur != stateEnd {
		switch cur {
		case stateExtract:
			state = m.extractNode(ctx, state, doc)
			cur = stateVerify
		case stateVerify:
			state = m.verifyNode(state)
			cur = nextAfterVerify(state, m.cfg.Orchestrate.MaxVerifyRetries)
		case stateRetry:
			state = retryNode(state)
			cur = stateExtract
		case stateMatch:
			state = m.matchNode(ctx, state)
			cur = stateDiscrepancy
		case stateDiscrepancy:
			state = m.discrepancyNode(state)
			cur = stateResolve
		case stateResolve:
			state = m.resolveNode(state)
			cur = stateEnd
		}
	}

	log.Info("recon: run complete",
		zap.String("invoice_id", state.InvoiceID),
		zap.String("action", string(state.FinalAction)),
		zap.String("matched_po", state.MatchedPO),
		zap.Int("discrepancies", len(state.Discrepancies)),
		zap.Int("trace_steps", len(state.Trace)),
	)
	return state
}

// nextAfterVerify is the machine's only conditional edge. Pure: it reads
// the state and returns a route without side effects, so the retry bound
// can be unit-tested independently of node logic.
func nextAfterVerify(s model.RunState, maxRetries int) stateID {
	if !s.MathVerified && s.RetryCount < maxRetries {
		return stateRetry
	}
	return stateMatch
}

func (m *Machine) extractNode(ctx context.Context, s model.RunState, doc Document) model.RunState {
	retryCfg := resilience.FixedCooldown(
		m.cfg.Extraction.MaxAttempts,
		time.Duration(m.cfg.Extraction.CooldownSecs)*time.Second,
	)
	retryCfg.OnRetry = resilience.RetryLogger("extraction", "extract")

	result, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*extraction.Result, error) {
		return m.extract.Extract(ctx, doc.Path)
	})
	if err != nil {
		// Degraded to zero confidence, never fatal: the run continues and
		// resolution escalates it.
		s.ExtractionConfidence = 0
		s.ExtractionReasoning = "Extraction failed: " + err.Error()
		zap.L().Warn("recon: extraction failed", zap.String("document", doc.Path), zap.Error(err))
		return s.WithTrace(model.TraceStep{
			Agent:      agentExtractor,
			Status:     "Success",
			Confidence: 0,
			Detail:     fmt.Sprintf("Extracted 0 line items. Notes: %s", s.ExtractionReasoning),
		})
	}

	s.InvoiceID = result.InvoiceID
	s.Supplier = result.SupplierName
	s.Date = result.Date
	s.POReference = result.POReference
	s.Items = toModelItems(result.LineItems)

	cap := m.cfg.Extraction.CleanCap
	reasoning := result.Notes
	if s.Quality == model.DocQualityDegraded {
		cap = m.cfg.Extraction.DegradedCap
		reasoning = strings.TrimSpace(reasoning + " [Note: confidence capped for degraded source quality.]")
	}
	s.ExtractionConfidence = math.Min(result.OverallConfidence, cap)
	s.ExtractionReasoning = reasoning

	return s.WithTrace(model.TraceStep{
		Agent:      agentExtractor,
		Status:     "Success",
		Confidence: s.ExtractionConfidence,
		Detail:     fmt.Sprintf("Extracted %d line items. Notes: %s", len(s.Items), s.ExtractionReasoning),
	})
}

func (m *Machine) verifyNode(s model.RunState) model.RunState {
	flags, passed := failClosed(m.verify, s.Items)
	s.VerificationFlags = flags
	s.MathVerified = passed

	status := "Passed"
	detail := "Math checks passed."
	if !passed {
		status = "Failed"
		detail = fmt.Sprintf("Found math errors: %v", flags)
	}

	return s.WithTrace(model.TraceStep{
		Agent:      agentVerifier,
		Status:     status,
		Confidence: 1.0,
		Detail:     detail,
	})
}

// failClosed runs the verifier, treating any panic as a verification
// failure rather than letting it escape the run.
func failClosed(verify VerifyFunc, items []model.LineItem) (flags []string, passed bool) {
	defer func() {
		if r := recover(); r != nil {
			flags = append(flags, fmt.Sprintf("verifier error: %v", r))
			passed = false
		}
	}()
	return verify(items)
}

func retryNode(s model.RunState) model.RunState {
	s.RetryCount++
	return s.WithTrace(model.TraceStep{
		Agent:      agentOrchestrator,
		Status:     "Looping",
		Confidence: 1.0,
		Detail:     "Triggering re-extraction due to math verification failure.",
	})
}

func (m *Machine) matchNode(ctx context.Context, s model.RunState) model.RunState {
	outcome := m.matcher.Match(ctx, s.Supplier, s.POReference, s.Items)
	s.MatchedPO = outcome.MatchedPO
	s.Candidates = outcome.Candidates
	s.MatchReasoning = outcome.Reasoning

	status := "No Match"
	confidence := 0.0
	if s.MatchedPO != "" {
		status = "Success"
		if len(s.Candidates) > 0 {
			confidence = s.Candidates[0].Confidence
		}
	}

	return s.WithTrace(model.TraceStep{
		Agent:      agentMatcher,
		Status:     status,
		Confidence: confidence,
		Detail:     s.MatchReasoning,
	})
}

func (m *Machine) discrepancyNode(s model.RunState) model.RunState {
	s.Discrepancies = m.detector.Check(s)

	count := len(s.Discrepancies)
	status := "Clean"
	detail := fmt.Sprintf("Found %d discrepancies.", count)
	if count > 0 {
		status = "Flagged"
		types := make([]string, 0, count)
		for _, d := range s.Discrepancies {
			types = append(types, string(d.Type))
		}
		detail += " Types: " + strings.Join(types, ", ")
	}

	return s.WithTrace(model.TraceStep{
		Agent:      agentDetector,
		Status:     status,
		Confidence: 1.0,
		Detail:     detail,
	})
}

func (m *Machine) resolveNode(s model.RunState) model.RunState {
	action, reasoning := Resolve(s, m.cfg.Policy)
	s.FinalAction = action
	s.FinalReasoning = reasoning

	return s.WithTrace(model.TraceStep{
		Agent:      agentResolver,
		Status:     "Complete",
		Confidence: 1.0,
		Detail:     fmt.Sprintf("Action: %s. Reason: %s", action, reasoning),
	})
}

func toModelItems(items []extraction.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	for i, item := range items {
		out[i] = model.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			Confidence:  item.Confidence,
		}
	}
	return out
}
