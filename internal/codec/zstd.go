package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec is the block codec at either a fast or a best-compression
// encoder level.
type zstdCodec struct {
	max bool
}

func (c zstdCodec) ID() string {
	if c.max {
		return ZstdMax
	}
	return Zstd
}

func (c zstdCodec) Label() string {
	if c.max {
		return "Zstandard (best compression)"
	}
	return "Zstandard (fast)"
}

func (zstdCodec) Extension() string { return ".pdf.zst" }

func (c zstdCodec) Class() Class {
	if c.max {
		return ClassMediumGood
	}
	return ClassFastOK
}

func (c zstdCodec) level() zstd.EncoderLevel {
	if c.max {
		return zstd.SpeedBestCompression
	}
	return zstd.SpeedFastest
}

func (c zstdCodec) Compress(dst io.Writer, src io.Reader, name string, size int64) error {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(c.level()))
	if err != nil {
		return err
	}
	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func (zstdCodec) Decompress(dst io.Writer, src io.Reader) error {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return err
	}
	defer dec.Close()
	_, err = io.Copy(dst, dec)
	return err
}
