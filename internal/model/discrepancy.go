package model

// DiscrepancyType classifies a detected invoice/PO mismatch.
type DiscrepancyType string

const (
	// DiscrepancyMissingPO: the match was inferred, the document carried no
	// explicit reference to the matched PO.
	DiscrepancyMissingPO DiscrepancyType = "missing_po"

	// DiscrepancyQtyMismatch: an aligned line item's quantity differs from
	// the PO quantity.
	DiscrepancyQtyMismatch DiscrepancyType = "qty_mismatch"

	// DiscrepancyPriceMismatch: an aligned line item's unit price deviates
	// from the PO price beyond tolerance.
	DiscrepancyPriceMismatch DiscrepancyType = "price_mismatch"

	// DiscrepancyItemNotFound: no PO line item cleared the description
	// alignment threshold for an invoice line.
	DiscrepancyItemNotFound DiscrepancyType = "item_not_found"
)

// Severity grades a discrepancy.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Discrepancy records one mismatch between invoice-stated and PO-stated
// values. Created only by the discrepancy engine; never mutated afterwards.
type Discrepancy struct {
	Type         DiscrepancyType `json:"type"`
	Severity     Severity        `json:"severity"`
	Field        string          `json:"field"`
	Details      string          `json:"details"`
	InvoiceValue any             `json:"invoice_value"`
	POValue      any             `json:"po_value"`
	Confidence   float64         `json:"confidence"`
}
