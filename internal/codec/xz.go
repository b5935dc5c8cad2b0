package codec

import (
	"archive/tar"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz"
)

// xzCodec compresses the chunk as a raw LZMA2 (xz) stream.
type xzCodec struct{}

func (xzCodec) ID() string        { return XZ }
func (xzCodec) Label() string     { return "LZMA2 stream (xz)" }
func (xzCodec) Extension() string { return ".pdf.xz" }
func (xzCodec) Class() Class      { return ClassSlowBest }

func (xzCodec) Compress(dst io.Writer, src io.Reader, name string, size int64) error {
	w, err := xz.NewWriter(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (xzCodec) Decompress(dst io.Writer, src io.Reader) error {
	r, err := xz.NewReader(src)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, r)
	return err
}

// maxDictCap is the xz dictionary capacity for the maximum-ratio
// preset. Larger dictionaries trade memory for ratio.
const maxDictCap = 64 << 20

// tarXZCodec writes a solid tar container compressed with xz. The max
// variant uses a large dictionary preset for best ratio.
type tarXZCodec struct {
	max bool
}

func (c tarXZCodec) ID() string {
	if c.max {
		return TarXZMax
	}
	return TarXZ
}

func (c tarXZCodec) Label() string {
	if c.max {
		return "Solid archive (tar+xz, max preset)"
	}
	return "Solid archive (tar+xz)"
}

func (tarXZCodec) Extension() string { return ".tar.xz" }

func (c tarXZCodec) Class() Class {
	if c.max {
		return ClassSlowestBest
	}
	return ClassSlowBest
}

func (c tarXZCodec) newWriter(dst io.Writer) (*xz.Writer, error) {
	if !c.max {
		return xz.NewWriter(dst)
	}
	cfg := xz.WriterConfig{DictCap: maxDictCap}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg.NewWriter(dst)
}

func (c tarXZCodec) Compress(dst io.Writer, src io.Reader, name string, size int64) error {
	xw, err := c.newWriter(dst)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(xw)
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    size,
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.Copy(tw, src); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return xw.Close()
}

func (tarXZCodec) Decompress(dst io.Writer, src io.Reader) error {
	xr, err := xz.NewReader(src)
	if err != nil {
		return err
	}
	tr := tar.NewReader(xr)
	if _, err := tr.Next(); err != nil {
		return fmt.Errorf("tar.xz: %w", err)
	}
	_, err = io.Copy(dst, tr)
	return err
}
