package model

import (
	"path/filepath"
	"strings"
)

// DocQuality classifies the scan quality of a source document. Degraded
// documents (scans, faxes, photos) carry a lower extraction confidence cap.
type DocQuality string

const (
	DocQualityClean    DocQuality = "clean"
	DocQualityDegraded DocQuality = "degraded"
)

// LineItem is a single extracted invoice line. Line items are produced by
// the extraction client and are immutable for the rest of the run.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
	Confidence  float64 `json:"confidence"`
}

// ClassifyQuality maps a source filename to a document quality using the
// configured hint substrings (case-insensitive match on the base name).
// Unknown filenames are assumed clean.
func ClassifyQuality(path string, degradedHints []string) DocQuality {
	name := strings.ToLower(filepath.Base(path))
	for _, hint := range degradedHints {
		if hint == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(hint)) {
			return DocQualityDegraded
		}
	}
	return DocQualityClean
}
