package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestMediaTypeFromExt(t *testing.T) {
	tests := map[string]string{
		"lease.PDF":  "application/pdf",
		"photo.jpg":  "image/jpeg",
		"notes.txt":  "text/plain",
		"scan.heic":  "",
		"contract":   "",
		"terms.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for in, want := range tests {
		if got := mediaTypeFromExt(in); got != want {
			t.Fatalf("mediaTypeFromExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	var buf bytes.Buffer
	if err := writeJSON(&buf, out, map[string]any{"summary": "s"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	want := "{\n  \"summary\": \"s\"\n}\n"
	if buf.String() != want {
		t.Fatalf("stdout = %q, want %q", buf.String(), want)
	}
	written, err := os.ReadFile(out)
	if err != nil || string(written) != want {
		t.Fatalf("file = %q (%v)", written, err)
	}
}

func TestReadDocumentRequiresPath(t *testing.T) {
	if _, _, err := readDocument(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
