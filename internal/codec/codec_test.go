package codec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sampleChunk produces compressible content resembling a small PDF.
func sampleChunk() []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n")
	for i := 0; i < 2000; i++ {
		b.WriteString("0 obj << /Type /Page /Parent 2 0 R >> endobj\n")
	}
	b.WriteString("%%EOF\n")
	return b.Bytes()
}

func writeChunk(t *testing.T, dir string) (string, []byte) {
	t.Helper()
	data := sampleChunk()
	path := filepath.Join(dir, "report_chunk001_pages001-005.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write chunk: %v", err)
	}
	return path, data
}

func TestRegistryOrderAndFallback(t *testing.T) {
	reg := NewRegistry()
	catalog := reg.Catalog()
	if len(catalog) == 0 {
		t.Fatal("empty catalog")
	}
	if catalog[0].ID != TarXZMax {
		t.Errorf("catalog starts with %q, want %q", catalog[0].ID, TarXZMax)
	}
	if last := catalog[len(catalog)-1]; last.ID != None {
		t.Errorf("catalog ends with %q, want %q", last.ID, None)
	}

	store, ok := reg.Lookup(None)
	if !ok || !store.Available {
		t.Fatal("store-only codec must always be available")
	}

	sel := reg.Selectable()
	if len(sel) == 0 || sel[len(sel)-1].ID != None {
		t.Errorf("selectable list must end with %q, got %v", None, sel)
	}
	for _, d := range sel {
		if !d.Available {
			t.Errorf("selectable list contains unavailable codec %q", d.ID)
		}
	}
}

func TestRegistryUnknownCodec(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("lz77-turbo"); err == nil {
		t.Error("expected error for unknown codec id")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustGet should panic on unknown codec id")
		}
	}()
	reg.MustGet("lz77-turbo")
}

func TestCompressRoundTripAllCodecs(t *testing.T) {
	reg := NewRegistry()
	cp := NewCompressor(reg)

	for _, d := range reg.Selectable() {
		if d.ID == None {
			continue
		}
		t.Run(d.ID, func(t *testing.T) {
			dir := t.TempDir()
			srcPath, original := writeChunk(t, dir)

			res, err := cp.Compress(srcPath, d.ID)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			wantPath := strings.TrimSuffix(srcPath, ".pdf") + d.Extension
			if res.Path != wantPath {
				t.Errorf("output path = %q, want %q", res.Path, wantPath)
			}
			if res.Size <= 0 {
				t.Errorf("output size = %d", res.Size)
			}
			if res.OriginalSize != int64(len(original)) {
				t.Errorf("original size = %d, want %d", res.OriginalSize, len(original))
			}

			// Input must not be mutated.
			after, err := os.ReadFile(srcPath)
			if err != nil {
				t.Fatalf("re-read input: %v", err)
			}
			if !bytes.Equal(after, original) {
				t.Error("input chunk file was mutated")
			}

			// Decompressing must reproduce byte-identical content.
			in, err := os.Open(res.Path)
			if err != nil {
				t.Fatalf("open artifact: %v", err)
			}
			defer in.Close()
			var restored bytes.Buffer
			if err := reg.MustGet(d.ID).Decompress(&restored, in); err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(restored.Bytes(), original) {
				t.Error("round-trip content mismatch")
			}

			// Repetitive sample content should actually shrink.
			if res.Size >= res.OriginalSize {
				t.Errorf("codec %s did not reduce size: %d >= %d", d.ID, res.Size, res.OriginalSize)
			}
			if res.Ratio() <= 0 {
				t.Errorf("ratio = %f, want > 0", res.Ratio())
			}
		})
	}
}

func TestCompressStoreOnlyKeepsInput(t *testing.T) {
	reg := NewRegistry()
	cp := NewCompressor(reg)
	dir := t.TempDir()
	srcPath, original := writeChunk(t, dir)

	res, err := cp.Compress(srcPath, None)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if res.Path != srcPath {
		t.Errorf("store-only output path = %q, want input %q", res.Path, srcPath)
	}
	if res.Size != int64(len(original)) {
		t.Errorf("store-only size = %d, want %d", res.Size, len(original))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("store-only produced extra files: %d entries", len(entries))
	}
	after, _ := os.ReadFile(srcPath)
	if !bytes.Equal(after, original) {
		t.Error("store-only mutated the chunk file")
	}
}

func TestCompressMissingInput(t *testing.T) {
	cp := NewCompressor(NewRegistry())
	if _, err := cp.Compress(filepath.Join(t.TempDir(), "nope.pdf"), Zip); err == nil {
		t.Error("expected error for missing input file")
	}
}
