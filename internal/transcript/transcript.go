// Package transcript loads transcript text from local files and measures it.
package transcript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	errEmptyPath       = errors.New("transcript path is empty")
	errEmptyPDFContent = errors.New("pdf content is empty")
)

// CountWords approximates a model token count with whitespace-delimited words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadFile returns the text of a transcript file. Files ending in .pdf are
// run through the PDF text extractor; anything else is read as UTF-8 text.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDFFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadPDF extracts the plain text of every page of a PDF held in memory.
func ReadPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyPDFContent
	}
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	return plainText(doc)
}

func readPDFFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ReadPDF(data)
}

func plainText(doc *pdf.Reader) (string, error) {
	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
