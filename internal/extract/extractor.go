// Package extract provides plain-text extraction from uploaded weather
// report files.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from report files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether filename has an accepted report extension.
func (e *Extractor) Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".xlsx", ".txt":
		return true
	default:
		return false
	}
}

// ExtractBytes extracts text from content based on the filename's
// extension. PDF and DOCX reports may yield empty text when the file
// carries no extractable text layer; that is not an error.
func (e *Extractor) ExtractBytes(content []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".txt":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("unsupported report format: %s", filepath.Ext(filename))
	}
}
