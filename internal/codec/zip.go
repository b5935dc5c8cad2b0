package codec

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
)

// zipCodec writes a single-entry ZIP archive. Deflate is backed by
// klauspost's flate at best compression instead of the stdlib encoder.
type zipCodec struct{}

func (zipCodec) ID() string        { return Zip }
func (zipCodec) Label() string     { return "ZIP archive (deflate)" }
func (zipCodec) Extension() string { return ".zip" }
func (zipCodec) Class() Class      { return ClassMediumOK }

func (zipCodec) Compress(dst io.Writer, src io.Reader, name string, size int64) error {
	zw := zip.NewWriter(dst)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return zw.Close()
}

func (zipCodec) Decompress(dst io.Writer, src io.Reader) error {
	// zip needs random access; archives here are single chunk files,
	// so buffering the whole archive is acceptable.
	buf, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return err
	}
	if len(zr.File) == 0 {
		return fmt.Errorf("zip: archive has no entries")
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(dst, rc)
	return err
}
