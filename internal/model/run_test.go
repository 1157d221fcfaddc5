package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunState(t *testing.T) {
	s := NewRunState("inv_001.pdf", DocQualityDegraded)
	assert.Equal(t, "inv_001.pdf", s.SourceFile)
	assert.Equal(t, DocQualityDegraded, s.Quality)
	assert.Equal(t, ActionPending, s.FinalAction)
	assert.Empty(t, s.Trace)
}

func TestWithTraceDoesNotAliasPriorCopies(t *testing.T) {
	base := NewRunState("inv_001.pdf", DocQualityClean)
	one := base.WithTrace(TraceStep{Agent: "A"})

	// Two branches appended from the same snapshot must not clobber each
	// other through a shared backing array.
	left := one.WithTrace(TraceStep{Agent: "B"})
	right := one.WithTrace(TraceStep{Agent: "C"})

	require.Len(t, one.Trace, 1)
	require.Len(t, left.Trace, 2)
	require.Len(t, right.Trace, 2)
	assert.Equal(t, "B", left.Trace[1].Agent)
	assert.Equal(t, "C", right.Trace[1].Agent)
}

func TestHasHighSeverity(t *testing.T) {
	s := RunState{Discrepancies: []Discrepancy{
		{Severity: SeverityLow},
		{Severity: SeverityMedium},
	}}
	assert.False(t, s.HasHighSeverity())

	s.Discrepancies = append(s.Discrepancies, Discrepancy{Severity: SeverityHigh})
	assert.True(t, s.HasHighSeverity())
}

func TestClassifyQuality(t *testing.T) {
	hints := []string{"scanned", "scan", "fax", "photo"}

	assert.Equal(t, DocQualityClean, ClassifyQuality("invoices/inv_001.pdf", hints))
	assert.Equal(t, DocQualityDegraded, ClassifyQuality("invoices/scanned_inv_002.pdf", hints))
	assert.Equal(t, DocQualityDegraded, ClassifyQuality("invoices/INV_FAX_003.PDF", hints))
	assert.Equal(t, DocQualityClean, ClassifyQuality("scanned_dir/inv_004.pdf", hints))
	assert.Equal(t, DocQualityClean, ClassifyQuality("invoices/scanned_inv.pdf", nil))
}
