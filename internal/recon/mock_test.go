package recon

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/pkg/extraction"
	"github.com/sells-group/recon-cli/pkg/posearch"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, documentPath string) (*extraction.Result, error) {
	args := m.Called(ctx, documentPath)
	if res := args.Get(0); res != nil {
		return res.(*extraction.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSearch struct {
	mock.Mock
}

func (m *mockSearch) Search(ctx context.Context, query string, topK int) ([]posearch.Hit, error) {
	args := m.Called(ctx, query, topK)
	if hits := args.Get(0); hits != nil {
		return hits.([]posearch.Hit), args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Extraction: config.ExtractionConfig{
			MaxAttempts: 1,
			CleanCap:    0.99,
			DegradedCap: 0.88,
		},
		Matcher: config.MatcherConfig{
			TopK:              3,
			DistanceThreshold: 0.40,
			VectorWeight:      0.4,
			SupplierWeight:    0.6,
			FuzzyCap:          0.85,
			CandidateFloor:    0.45,
			AcceptThreshold:   0.60,
			ExactConfidence:   0.95,
		},
		Verify:      config.VerifyConfig{MathTolerance: 0.01},
		Discrepancy: config.DiscrepancyConfig{AlignmentThreshold: 0.6, PriceTolerance: 0.05, HighVariance: 0.15},
		Policy:      config.PolicyConfig{ConfidenceFloor: 0.80, ConfidenceCap: 0.95},
		Orchestrate: config.OrchestrateConfig{MaxVerifyRetries: 1},
	}
}

func testRegistry() *model.PORegistry {
	return model.NewPORegistry([]model.PurchaseOrder{
		{
			Number:   "PO-100",
			Supplier: "Acme Industrial Supply",
			LineItems: []model.POLineItem{
				{Description: "Steel bolts M8", Quantity: 500, UnitPrice: 0.25},
				{Description: "Hex nuts M8", Quantity: 500, UnitPrice: 0.10},
			},
		},
		{
			Number:   "PO-200",
			Supplier: "Borealis Packaging",
			LineItems: []model.POLineItem{
				{Description: "Corrugated boxes 40x40", Quantity: 200, UnitPrice: 1.50},
			},
		},
	})
}
