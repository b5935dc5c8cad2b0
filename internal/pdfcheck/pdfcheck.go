// Package pdfcheck verifies written chunk files with an independent PDF
// engine before they are compressed and the originals deleted.
package pdfcheck

import (
	"errors"
	"fmt"
)

// Doc abstracts an opened PDF document.
type Doc interface {
	NumPage() int
	Close() error
}

// Opener abstracts opening a PDF path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

// defaultOpener is provided in doc_open_fitz.go using go-fitz.
var defaultOpener Opener

// setDefaultOpener allows swapping the default opener, useful for tests
// or alternate backends.
func setDefaultOpener(o Opener) { defaultOpener = o }

// Verify opens the chunk at path and checks that it parses and carries
// exactly wantPages pages.
func Verify(path string, wantPages int) error {
	if defaultOpener == nil {
		return errors.New("no PDF opener configured")
	}
	d, err := defaultOpener.Open(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	defer d.Close()
	if got := d.NumPage(); got != wantPages {
		return fmt.Errorf("verify %s: has %d pages, want %d", path, got, wantPages)
	}
	return nil
}
