package recon

import (
	"fmt"
	"math"

	"github.com/sells-group/recon-cli/internal/model"
)

// VerifyMath recomputes quantity × unit price for every extracted line item
// and flags rows whose stated total deviates by more than the tolerance.
// The tolerance absorbs rounding noise; 0.01 is the default.
func VerifyMath(items []model.LineItem, tolerance float64) (flags []string, passed bool) {
	passed = true
	for _, item := range items {
		calculated := item.Quantity * item.UnitPrice
		if math.Abs(calculated-item.LineTotal) > tolerance {
			passed = false
			flags = append(flags, fmt.Sprintf(
				"math error for %q: %g*%g=%g != %g",
				item.Description, item.Quantity, item.UnitPrice, calculated, item.LineTotal,
			))
		}
	}
	return flags, passed
}
