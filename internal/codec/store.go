package codec

import "io"

// storeCodec is the "no compression" method. The Compressor never
// routes through Compress for it (the chunk file itself is the final
// artifact), but the implementation is complete so probing and tests
// treat it like any other codec.
type storeCodec struct{}

func (storeCodec) ID() string        { return None }
func (storeCodec) Label() string     { return "Store only (no compression)" }
func (storeCodec) Extension() string { return ".pdf" }
func (storeCodec) Class() Class      { return ClassInstant }

func (storeCodec) Compress(dst io.Writer, src io.Reader, name string, size int64) error {
	_, err := io.Copy(dst, src)
	return err
}

func (storeCodec) Decompress(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}
