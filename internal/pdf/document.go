// Package pdf wraps pdfcpu with the document operations the chunking
// pipeline needs: loading a source PDF, serializing arbitrary page
// subsets into memory for exact size measurement, and writing page
// ranges to disk.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is an immutable in-memory PDF. It is read-only after
// construction and safe to share across independent planning runs.
type Document struct {
	name  string
	data  []byte
	pages int
}

// newConfiguration returns the pdfcpu configuration used for all
// read/trim/write operations. Relaxed validation keeps slightly
// malformed real-world PDFs processable.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Load reads the PDF at path into memory.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromBytes(name, data)
}

// FromBytes builds a Document from raw PDF bytes. The name is the base
// name (no extension) used for derived artifact names.
func FromBytes(name string, data []byte) (*Document, error) {
	n, err := api.PageCount(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	if n <= 0 {
		return nil, &ParseError{Path: name, Err: fmt.Errorf("document has no pages")}
	}
	return &Document{name: name, data: data, pages: n}, nil
}

// Name returns the document's base name without extension.
func (d *Document) Name() string { return d.name }

// PageCount returns the total number of pages.
func (d *Document) PageCount() int { return d.pages }

// Size returns the size of the source document in bytes.
func (d *Document) Size() int64 { return int64(len(d.data)) }

// NewReader returns a fresh reader over the source bytes.
func (d *Document) NewReader() *bytes.Reader { return bytes.NewReader(d.data) }

// Serialize writes the document containing exactly the given 0-based
// pages (with every shared resource they reference) into a transient
// buffer and returns it. The buffer is never persisted.
func (d *Document) Serialize(pages []int) ([]byte, error) {
	sel, err := pageSelection(pages, d.pages)
	if err != nil {
		return nil, &SerializationError{Pages: pages, Err: err}
	}
	var buf bytes.Buffer
	if err := api.Trim(d.NewReader(), &buf, sel, newConfiguration()); err != nil {
		return nil, &SerializationError{Pages: pages, Err: err}
	}
	return buf.Bytes(), nil
}

// MeasurePages reports the exact serialized size of the given pages.
// This is a full serialization, not a proportional estimate: shared
// fonts, images and cross-reference tables make page sizes non-additive.
func (d *Document) MeasurePages(ctx context.Context, pages []int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b, err := d.Serialize(pages)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteRange serializes the half-open page range [start, end) to path
// and returns the byte count on disk.
func (d *Document) WriteRange(start, end int, path string) (int64, error) {
	pages := make([]int, 0, end-start)
	for p := start; p < end; p++ {
		pages = append(pages, p)
	}
	b, err := d.Serialize(pages)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return 0, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// pageSelection converts 0-based page indices into pdfcpu's 1-based
// selection strings, collapsing contiguous runs into "start-end" spans.
func pageSelection(pages []int, total int) ([]string, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("empty page selection")
	}
	var sel []string
	runStart := pages[0]
	prev := pages[0]
	flush := func() {
		if runStart == prev {
			sel = append(sel, fmt.Sprintf("%d", runStart+1))
		} else {
			sel = append(sel, fmt.Sprintf("%d-%d", runStart+1, prev+1))
		}
	}
	for i, p := range pages {
		if p < 0 || p >= total {
			return nil, fmt.Errorf("page index %d out of range [0,%d)", p, total)
		}
		if i == 0 {
			continue
		}
		if p == prev+1 {
			prev = p
			continue
		}
		flush()
		runStart, prev = p, p
	}
	flush()
	return sel, nil
}
