package recon

import (
	"fmt"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
)

// Detector aligns invoice line items to the matched PO's lines and flags
// value mismatches. It only runs when a PO was matched; an unmatched invoice
// is surfaced by the matcher's trace, not here.
type Detector struct {
	registry *model.PORegistry
	cfg      config.DiscrepancyConfig
}

// NewDetector creates a discrepancy detector over the PO registry.
func NewDetector(registry *model.PORegistry, cfg config.DiscrepancyConfig) *Detector {
	return &Detector{registry: registry, cfg: cfg}
}

// Check returns every discrepancy found between the extracted invoice and
// the matched PO. Discrepancies accumulate and are never deduplicated;
// multiple findings per line item are expected.
func (d *Detector) Check(s model.RunState) []model.Discrepancy {
	if s.MatchedPO == "" {
		return nil
	}
	po, ok := d.registry.Get(s.MatchedPO)
	if !ok {
		return nil
	}

	var found []model.Discrepancy

	// Inferred matches get a medium flag: the document never named the PO.
	if s.POReference != s.MatchedPO {
		found = append(found, model.Discrepancy{
			Type:     model.DiscrepancyMissingPO,
			Severity: model.SeverityMedium,
			Field:    "po_reference",
			Details: fmt.Sprintf("Document lacks explicit reference to %s; match inferred via supplier/content.",
				s.MatchedPO),
			InvoiceValue: s.POReference,
			POValue:      s.MatchedPO,
			Confidence:   0.85,
		})
	}

	for i, item := range s.Items {
		poItem, aligned := d.alignItem(item, po.LineItems)
		if !aligned {
			found = append(found, model.Discrepancy{
				Type:         model.DiscrepancyItemNotFound,
				Severity:     model.SeverityMedium,
				Field:        fmt.Sprintf("line_item_%d", i),
				Details:      fmt.Sprintf("Item %q not found on purchase order.", item.Description),
				InvoiceValue: item.Description,
				POValue:      "Not Found",
				Confidence:   0.9,
			})
			continue
		}

		if poItem.UnitPrice > 0 {
			variance := (item.UnitPrice - poItem.UnitPrice) / poItem.UnitPrice
			if variance > d.cfg.PriceTolerance {
				severity := model.SeverityMedium
				if variance > d.cfg.HighVariance {
					severity = model.SeverityHigh
				}
				found = append(found, model.Discrepancy{
					Type:     model.DiscrepancyPriceMismatch,
					Severity: severity,
					Field:    fmt.Sprintf("line_item_%d_price", i),
					Details: fmt.Sprintf("Unit price deviation of %.1f%% (%.2f vs %.2f) exceeds standard tolerance.",
						variance*100, item.UnitPrice, poItem.UnitPrice),
					InvoiceValue: item.UnitPrice,
					POValue:      poItem.UnitPrice,
					Confidence:   0.95,
				})
			}
		}

		if item.Quantity != poItem.Quantity {
			found = append(found, model.Discrepancy{
				Type:     model.DiscrepancyQtyMismatch,
				Severity: model.SeverityMedium,
				Field:    fmt.Sprintf("line_item_%d_qty", i),
				Details: fmt.Sprintf("Quantity mismatch (%g vs %g) for aligned item.",
					item.Quantity, poItem.Quantity),
				InvoiceValue: item.Quantity,
				POValue:      poItem.Quantity,
				Confidence:   0.95,
			})
		}
	}

	return found
}

// alignItem finds the PO line with the most similar description. The
// threshold prevents comparing unrelated rows purely by position.
func (d *Detector) alignItem(item model.LineItem, poItems []model.POLineItem) (model.POLineItem, bool) {
	var best model.POLineItem
	bestScore := 0.0

	for _, poItem := range poItems {
		score := lexicalRatio(item.Description, poItem.Description)
		if score > bestScore {
			bestScore = score
			best = poItem
		}
	}

	if bestScore > d.cfg.AlignmentThreshold {
		return best, true
	}
	return model.POLineItem{}, false
}
