package model

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// POLineItem is a single line on a purchase order.
type POLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// PurchaseOrder is reference data describing what was agreed before
// invoicing. Read-only during a run.
type PurchaseOrder struct {
	Number    string       `json:"po_number"`
	Supplier  string       `json:"supplier"`
	LineItems []POLineItem `json:"line_items"`
}

// SearchText renders the PO as the text document indexed for fuzzy search.
func (po PurchaseOrder) SearchText() string {
	descs := make([]string, 0, len(po.LineItems))
	for _, item := range po.LineItems {
		descs = append(descs, item.Description)
	}
	return "Supplier: " + po.Supplier + ". Items: " + strings.Join(descs, ", ")
}

// PORegistry holds all known purchase orders keyed by PO number.
// Loaded once at startup and never mutated while runs are in flight.
type PORegistry struct {
	orders map[string]PurchaseOrder
}

// poFile is the on-disk shape of the PO reference data.
type poFile struct {
	PurchaseOrders []PurchaseOrder `json:"purchase_orders"`
}

// LoadPORegistry reads the PO reference data from a JSON file. A missing
// or unreadable file is a fatal startup error for the batch.
func LoadPORegistry(path string) (*PORegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read PO reference data %s", path)
	}

	var f poFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "model: parse PO reference data %s", path)
	}

	orders := make(map[string]PurchaseOrder, len(f.PurchaseOrders))
	for _, po := range f.PurchaseOrders {
		orders[po.Number] = po
	}
	return &PORegistry{orders: orders}, nil
}

// NewPORegistry builds a registry from in-memory orders. Used by tests and
// by callers that source reference data elsewhere.
func NewPORegistry(orders []PurchaseOrder) *PORegistry {
	m := make(map[string]PurchaseOrder, len(orders))
	for _, po := range orders {
		m[po.Number] = po
	}
	return &PORegistry{orders: m}
}

// Get returns the purchase order for the given number, if present.
func (r *PORegistry) Get(number string) (PurchaseOrder, bool) {
	po, ok := r.orders[number]
	return po, ok
}

// Len returns the number of purchase orders in the registry.
func (r *PORegistry) Len() int { return len(r.orders) }

// All returns every purchase order ordered by PO number.
func (r *PORegistry) All() []PurchaseOrder {
	out := make([]PurchaseOrder, 0, len(r.orders))
	for _, po := range r.orders {
		out = append(out, po)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
