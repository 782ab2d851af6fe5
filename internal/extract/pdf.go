package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/spigell/resume-screener/internal/screening"
)

var errEmptyDocument = errors.New("document has no content")

// PDF extracts plain text from PDF documents.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

// Extract returns the document text with pages joined by newlines. Documents
// carrying only a Path are read from disk.
func (p *PDF) Extract(ctx context.Context, doc screening.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := doc.Data
	if len(data) == 0 && doc.Path != "" {
		raw, err := os.ReadFile(doc.Path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", doc.Path, err)
		}
		data = raw
	}

	return TextFromBytes(data)
}

// TextFromBytes parses a PDF held in memory. Malformed input yields an error,
// never a panic.
func TextFromBytes(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errEmptyDocument
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	parts := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}

		if strings.TrimSpace(pageText) == "" {
			continue
		}
		parts = append(parts, pageText)
	}

	return strings.Join(parts, "\n"), nil
}
