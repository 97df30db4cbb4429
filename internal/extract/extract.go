// Package extract pulls plain text out of uploaded study documents.
// Extraction is a best-effort enrichment step: any failure is logged and
// yields an empty string instead of an error.
package extract

import (
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"learnhub/internal/pkg/logger"
)

type Extractor struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Extractor {
	return &Extractor{log: log}
}

// Text extracts plain text from the file at path according to fileType
// (pdf, docx, pptx, txt). Unknown types and extraction failures return "".
func (e *Extractor) Text(path, fileType string) string {
	var (
		text string
		err  error
	)
	switch strings.ToLower(fileType) {
	case "pdf":
		text, err = extractPDF(path)
	case "docx":
		text, err = extractDocx(path)
	case "pptx":
		text, err = extractPptx(path)
	case "txt":
		text, err = extractTxt(path)
	default:
		err = fmt.Errorf("unsupported file type %q", fileType)
	}
	if err != nil {
		e.log.Warn("text extraction failed", "path", path, "file_type", fileType, "error", err)
		return ""
	}
	return text
}

// extractPDF concatenates per-page text with newline separators, in page order.
func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d failed: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDocx(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx failed: %w", err)
	}
	defer f.Close()

	text, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return "", fmt.Errorf("convert docx failed: %w", err)
	}
	return text, nil
}

func extractPptx(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pptx failed: %w", err)
	}
	defer f.Close()

	text, _, err := docconv.ConvertPptx(f)
	if err != nil {
		return "", fmt.Errorf("convert pptx failed: %w", err)
	}
	return text, nil
}

func extractTxt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read txt failed: %w", err)
	}
	return string(data), nil
}
