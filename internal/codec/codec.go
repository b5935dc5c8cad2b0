// Package codec provides the compression methods chunk artifacts can be
// finished with: a uniform Codec interface, an ordered registry with
// startup availability probing, and the file-level Compressor dispatch.
package codec

import (
	"fmt"
	"io"
)

// Codec ids. None is always available and is the safe fallback.
const (
	None     = "none"
	Zip      = "zip"
	Bzip2    = "bzip2"
	XZ       = "xz"
	TarXZ    = "txz"
	TarXZMax = "txz-max"
	Zstd     = "zstd"
	ZstdMax  = "zstd-max"
	S2       = "s2"
)

// Class is a coarse speed/ratio classification used for presentation.
type Class string

const (
	ClassSlowestBest Class = "slowest/best-ratio"
	ClassSlowBest    Class = "slow/best-ratio"
	ClassSlowGood    Class = "slow/good-ratio"
	ClassMediumGood  Class = "medium/good-ratio"
	ClassMediumOK    Class = "medium/ok-ratio"
	ClassFastOK      Class = "fast/ok-ratio"
	ClassFastest     Class = "fastest/light-ratio"
	ClassInstant     Class = "instant/none"
)

// Codec is one compression method. Compress and Decompress operate on
// whole streams; name and size describe the single entry for container
// formats (zip, tar). Implementations never buffer more than they must.
type Codec interface {
	ID() string
	Label() string
	// Extension replaces the chunk file's ".pdf" suffix, so stream
	// codecs use compound extensions like ".pdf.zst".
	Extension() string
	Class() Class
	Compress(dst io.Writer, src io.Reader, name string, size int64) error
	Decompress(dst io.Writer, src io.Reader) error
}

// Descriptor is the registry's immutable, presentation-ready view of a
// codec. Unavailable codecs remain in the catalog for documentation but
// are excluded from selection.
type Descriptor struct {
	ID        string
	Label     string
	Extension string
	Class     Class
	Available bool
}

// UnavailableError reports a codec whose underlying capability failed
// its startup probe. Normal selection filters such codecs out, so
// surfacing this mid-run means selection was bypassed.
type UnavailableError struct {
	ID  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("codec %q unavailable: %v", e.ID, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
