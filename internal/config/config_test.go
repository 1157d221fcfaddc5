package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "recon.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)

	assert.Equal(t, 3, cfg.Extraction.MaxAttempts)
	assert.Equal(t, 65, cfg.Extraction.CooldownSecs)
	assert.Equal(t, 0.99, cfg.Extraction.CleanCap)
	assert.Equal(t, 0.88, cfg.Extraction.DegradedCap)
	assert.Contains(t, cfg.Extraction.DegradedHints, "scanned")

	assert.Equal(t, "hash", cfg.Search.Provider)

	assert.Equal(t, 3, cfg.Matcher.TopK)
	assert.Equal(t, 0.40, cfg.Matcher.DistanceThreshold)
	assert.Equal(t, 0.4, cfg.Matcher.VectorWeight)
	assert.Equal(t, 0.6, cfg.Matcher.SupplierWeight)
	assert.Equal(t, 0.85, cfg.Matcher.FuzzyCap)
	assert.Equal(t, 0.45, cfg.Matcher.CandidateFloor)
	assert.Equal(t, 0.60, cfg.Matcher.AcceptThreshold)
	assert.Equal(t, 0.95, cfg.Matcher.ExactConfidence)

	assert.Equal(t, 0.01, cfg.Verify.MathTolerance)
	assert.Equal(t, 0.6, cfg.Discrepancy.AlignmentThreshold)
	assert.Equal(t, 0.05, cfg.Discrepancy.PriceTolerance)
	assert.Equal(t, 0.15, cfg.Discrepancy.HighVariance)

	assert.Equal(t, 0.80, cfg.Policy.ConfidenceFloor)
	assert.Equal(t, 0.95, cfg.Policy.ConfidenceCap)
	assert.Equal(t, 1, cfg.Orchestrate.MaxVerifyRetries)
	assert.Equal(t, 1, cfg.Batch.MaxConcurrentInvoices)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RECON_STORE_PATH", "/tmp/other.db")
	t.Setenv("RECON_SEARCH_PROVIDER", "ollama")
	t.Setenv("RECON_ORCHESTRATE_MAX_VERIFY_RETRIES", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Store.Path)
	assert.Equal(t, "ollama", cfg.Search.Provider)
	assert.Equal(t, 2, cfg.Orchestrate.MaxVerifyRetries)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouty", Format: "json"})
	require.Error(t, err)

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
