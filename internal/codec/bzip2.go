package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// bzip2Codec compresses the chunk as a raw bzip2 stream. dsnet/compress
// is used because the standard library only ships a bzip2 reader.
type bzip2Codec struct{}

func (bzip2Codec) ID() string        { return Bzip2 }
func (bzip2Codec) Label() string     { return "Bzip2 stream" }
func (bzip2Codec) Extension() string { return ".pdf.bz2" }
func (bzip2Codec) Class() Class      { return ClassSlowGood }

func (bzip2Codec) Compress(dst io.Writer, src io.Reader, name string, size int64) error {
	w, err := bzip2.NewWriter(dst, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (bzip2Codec) Decompress(dst io.Writer, src io.Reader) error {
	r, err := bzip2.NewReader(src, nil)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		return err
	}
	return r.Close()
}
