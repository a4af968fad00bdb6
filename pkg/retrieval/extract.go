package retrieval

import (
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// Extractor returns the plain text of one document.
type Extractor func(path string) (string, error)

// ExtractText reads a plain-text or Markdown file as-is.
func ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExtractPDF returns the text content of every page of a PDF.
func ExtractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	content, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(data), nil
}

// safeExtract runs extract and converts a panic inside a third-party
// parser into an error, so one malformed document cannot abort the build.
func safeExtract(extract Extractor, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panicked: %v", r)
		}
	}()
	return extract(path)
}
