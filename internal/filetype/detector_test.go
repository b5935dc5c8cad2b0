package filetype

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDetectPDFByMagicBytes(t *testing.T) {
	// Extension is deliberately wrong: detection goes by content.
	path := writeFile(t, "doc.bin", []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF\n"))
	info, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !info.IsPDF {
		t.Errorf("IsPDF = false for PDF content, mime %q", info.MIMEType)
	}
	if err := EnsurePDF(path); err != nil {
		t.Errorf("EnsurePDF: %v", err)
	}
}

func TestEnsurePDFRejectsOtherContent(t *testing.T) {
	path := writeFile(t, "doc.pdf", []byte("just some text, extension lies"))
	if err := EnsurePDF(path); err == nil {
		t.Error("expected rejection of non-PDF content")
	}
}

func TestDetectMissingFile(t *testing.T) {
	if _, err := Detect(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
