package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	cases := map[string]int{
		"":                              0,
		"   \n\t":                       0,
		"Revenue grew":                  2,
		"  Q3\nguidance\t raised  again": 4,
	}
	for in, want := range cases {
		if got := CountWords(in); got != want {
			t.Fatalf("CountWords(%q): got %d want %d", in, got, want)
		}
	}
}

func TestReadFileText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.txt")
	if err := os.WriteFile(path, []byte("Operator: welcome to the call."), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	text, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if text != "Operator: welcome to the call." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestReadFileErrors(t *testing.T) {
	if _, err := ReadFile(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}

	notPDF := filepath.Join(t.TempDir(), "call.PDF")
	if err := os.WriteFile(notPDF, []byte("plain text, not a pdf"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadFile(notPDF); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestReadPDFRejectsEmptyInput(t *testing.T) {
	if _, err := ReadPDF(nil); err != errEmptyPDFContent {
		t.Fatalf("expected errEmptyPDFContent, got %v", err)
	}
}

func TestReadFilePDF(t *testing.T) {
	text, err := ReadFile(filepath.Join("testdata", "call.pdf"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"Acme third quarter earnings call", "Revenue grew twelve percent"} {
		if !strings.Contains(text, want) {
			t.Fatalf("extracted text missing %q: %q", want, text)
		}
	}
	if words := CountWords(text); words < 10 {
		t.Fatalf("unexpected word count %d for %q", words, text)
	}
}

func TestReadPDFFromMemory(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "call.pdf"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text, err := ReadPDF(data)
	if err != nil {
		t.Fatalf("ReadPDF() error = %v", err)
	}
	if !strings.Contains(text, "Operator:") {
		t.Fatalf("unexpected text: %q", text)
	}
}
