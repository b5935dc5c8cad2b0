package codec

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// s2Codec is the frame-based very-fast method: light ratio, near-I/O
// speed, useful when chunks are large and time matters more than size.
type s2Codec struct{}

func (s2Codec) ID() string        { return S2 }
func (s2Codec) Label() string     { return "S2 frame stream (very fast)" }
func (s2Codec) Extension() string { return ".pdf.s2" }
func (s2Codec) Class() Class      { return ClassFastest }

func (s2Codec) Compress(dst io.Writer, src io.Reader, name string, size int64) error {
	w := s2.NewWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s2Codec) Decompress(dst io.Writer, src io.Reader) error {
	r := s2.NewReader(src)
	_, err := io.Copy(dst, r)
	return err
}
