package recon

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
)

// Resolve maps the accumulated evidence to a final action. Pure function:
// it reads the state and returns the verdict without mutating anything.
//
// Rules are evaluated in strict precedence order and the first match wins.
// Confidence and severity gates come before any clean path, so an uncertain
// run can never auto-approve.
func Resolve(s model.RunState, cfg config.PolicyConfig) (model.Action, string) {
	var reasons []string

	hasDiscrepancies := len(s.Discrepancies) > 0
	confidence := math.Min(s.ExtractionConfidence, cfg.ConfidenceCap)

	switch {
	case confidence < cfg.ConfidenceFloor:
		reasons = append(reasons, fmt.Sprintf("Low extraction confidence (%.2f) requires human review.", confidence))
		return model.ActionEscalate, strings.Join(reasons, "; ")

	case s.HasHighSeverity():
		for _, d := range s.Discrepancies {
			if d.Severity == model.SeverityHigh {
				reasons = append(reasons, "CRITICAL: "+d.Details)
			}
		}
		return model.ActionEscalate, strings.Join(reasons, "; ")

	case hasDiscrepancies:
		for _, d := range s.Discrepancies {
			switch d.Type {
			case model.DiscrepancyPriceMismatch:
				reasons = append(reasons, fmt.Sprintf("Price variance detected (%v vs %v).", d.InvoiceValue, d.POValue))
			case model.DiscrepancyMissingPO:
				reasons = append(reasons, fmt.Sprintf("PO inferred (%v) but not explicit on the document.", d.POValue))
			case model.DiscrepancyQtyMismatch:
				reasons = append(reasons, fmt.Sprintf("Quantity difference (%v vs %v).", d.InvoiceValue, d.POValue))
			case model.DiscrepancyItemNotFound:
				reasons = append(reasons, fmt.Sprintf("Invoice item %v not present on the purchase order.", d.InvoiceValue))
			}
		}
		return model.ActionFlagForReview, strings.Join(reasons, "; ")

	case s.MatchedPO != "" && s.MathVerified:
		reasons = append(reasons, "Clean three-way match (invoice, purchase order, arithmetic).")
		return model.ActionAutoApprove, strings.Join(reasons, "; ")

	default:
		reasons = append(reasons, "System uncertainty regarding PO match.")
		return model.ActionEscalate, strings.Join(reasons, "; ")
	}
}
