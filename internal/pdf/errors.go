package pdf

import "fmt"

// ParseError means the source document is unreadable or corrupt.
// It is fatal: nothing downstream can run without a parsed document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SerializationError means a page set could not be encoded. During
// planning this aborts the whole run: if measurement is broken, no
// chunk boundary can be trusted.
type SerializationError struct {
	Pages []int
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize %d page(s): %v", len(e.Pages), e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
