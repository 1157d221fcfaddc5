package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/recon-cli/internal/model"
)

func TestVerifyMathPasses(t *testing.T) {
	items := []model.LineItem{
		{Description: "Steel bolts M8", Quantity: 500, UnitPrice: 0.25, LineTotal: 125.00},
		{Description: "Hex nuts M8", Quantity: 500, UnitPrice: 0.10, LineTotal: 50.00},
	}

	flags, passed := VerifyMath(items, 0.01)
	assert.True(t, passed)
	assert.Empty(t, flags)
}

func TestVerifyMathFlagsInconsistentRows(t *testing.T) {
	items := []model.LineItem{
		{Description: "Steel bolts M8", Quantity: 500, UnitPrice: 0.25, LineTotal: 125.00},
		{Description: "Hex nuts M8", Quantity: 500, UnitPrice: 0.10, LineTotal: 55.00},
	}

	flags, passed := VerifyMath(items, 0.01)
	assert.False(t, passed)
	assert.Len(t, flags, 1)
	assert.Contains(t, flags[0], "Hex nuts M8")
}

func TestVerifyMathToleranceAbsorbsRounding(t *testing.T) {
	items := []model.LineItem{
		// Off by a rounded cent, within the default tolerance.
		{Description: "Widget", Quantity: 3, UnitPrice: 3.33, LineTotal: 10.00},
	}

	flags, passed := VerifyMath(items, 0.01)
	assert.True(t, passed)
	assert.Empty(t, flags)
}

func TestVerifyMathEmptyInvoicePasses(t *testing.T) {
	flags, passed := VerifyMath(nil, 0.01)
	assert.True(t, passed)
	assert.Empty(t, flags)
}

func TestVerifyMathReportsEveryBadRow(t *testing.T) {
	items := []model.LineItem{
		{Description: "A", Quantity: 2, UnitPrice: 5, LineTotal: 11},
		{Description: "B", Quantity: 4, UnitPrice: 2, LineTotal: 9},
	}

	flags, passed := VerifyMath(items, 0.01)
	assert.False(t, passed)
	assert.Len(t, flags, 2)
}
