// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from downloaded PDFs for the local
// full-text index.
package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// MaxBytes bounds the extracted text so a pathological PDF cannot bloat
// the index.
const MaxBytes = 2 << 20

// Extract returns the plain text of the PDF at path, truncated to MaxBytes.
func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading extracted text from %s: %w", path, err)
	}

	text := buf.String()
	if len(text) > MaxBytes {
		text = text[:MaxBytes]
	}
	return text, nil
}
