// Package docext extracts best-effort plain text from CV documents.
//
// Supported formats: .pdf (pdfcpu content streams) and .docx
// (word/document.xml inside the ZIP archive). Extraction never fails from
// the caller's perspective: unsupported extensions and parse errors yield
// the empty string, and the reason lives in the logs only.
package docext

import (
	"path/filepath"
	"strings"

	"go-whatscv-backend/pkg/logger"
)

// Extractor implements domain.TextExtractor.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := extractPDF(path)
		if err != nil {
			logger.Log.Warn("pdf text extraction failed", "path", path, "error", err)
			return ""
		}
		return text
	case ".docx":
		text, err := extractDocx(path)
		if err != nil {
			logger.Log.Warn("docx text extraction failed", "path", path, "error", err)
			return ""
		}
		return text
	default:
		logger.Log.Debug("unsupported document type, skipping extraction", "path", path)
		return ""
	}
}
