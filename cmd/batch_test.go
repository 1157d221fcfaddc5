package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverInvoices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_inv.pdf", "a_inv.pdf", "notes.txt", "scan.PDF"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.pdf"), 0o755))

	files, err := discoverInvoices(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a_inv.pdf"),
		filepath.Join(dir, "b_inv.pdf"),
		filepath.Join(dir, "scan.PDF"),
	}, files)
}

func TestDiscoverInvoicesMissingDir(t *testing.T) {
	_, err := discoverInvoices(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
