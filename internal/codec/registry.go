package codec

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Registry is the ordered catalog of compression methods. Ordering is
// presentational (slowest/best-ratio first, store-only last). The
// registry is read-only after construction and safe for concurrent
// reads without locking.
type Registry struct {
	order   []string
	entries map[string]*entry
}

type entry struct {
	codec Codec
	desc  Descriptor
}

// NewRegistry builds the catalog and probes every codec once. A codec
// that fails its probe stays in the catalog but is not selectable, so
// missing capabilities surface here rather than mid-operation.
func NewRegistry() *Registry {
	codecs := []Codec{
		tarXZCodec{max: true},
		tarXZCodec{},
		xzCodec{},
		bzip2Codec{},
		zstdCodec{max: true},
		zipCodec{},
		zstdCodec{},
		s2Codec{},
		storeCodec{},
	}
	r := &Registry{entries: make(map[string]*entry, len(codecs))}
	for _, c := range codecs {
		available := true
		if err := probe(c); err != nil {
			available = false
			log.Warn().Str("codec", c.ID()).Err(err).Msg("codec failed availability probe")
		}
		r.order = append(r.order, c.ID())
		r.entries[c.ID()] = &entry{
			codec: c,
			desc: Descriptor{
				ID:        c.ID(),
				Label:     c.Label(),
				Extension: c.Extension(),
				Class:     c.Class(),
				Available: available,
			},
		}
	}
	return r
}

// probe round-trips a small sample through the codec.
func probe(c Codec) error {
	sample := []byte("%PDF-1.4 codec availability probe\n")
	var compressed bytes.Buffer
	if err := c.Compress(&compressed, bytes.NewReader(sample), "probe.pdf", int64(len(sample))); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	var restored bytes.Buffer
	if err := c.Decompress(&restored, &compressed); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if !bytes.Equal(restored.Bytes(), sample) {
		return fmt.Errorf("round-trip mismatch")
	}
	return nil
}

// Lookup returns the descriptor for id.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Descriptor{}, false
	}
	return e.desc, true
}

// Get returns the codec for id. Unknown ids are an error; ids whose
// probe failed return *UnavailableError.
func (r *Registry) Get(id string) (Codec, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", id)
	}
	if !e.desc.Available {
		return nil, &UnavailableError{ID: id, Err: fmt.Errorf("availability probe failed")}
	}
	return e.codec, nil
}

// MustGet is Get for ids already validated against the catalog; an
// unknown id is a programming error.
func (r *Registry) MustGet(id string) Codec {
	c, err := r.Get(id)
	if err != nil {
		panic(err)
	}
	return c
}

// Catalog returns all descriptors in presentation order, including
// unavailable ones.
func (r *Registry) Catalog() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].desc)
	}
	return out
}

// Selectable returns the descriptors a caller may choose from: the
// catalog order filtered to available codecs. Store-only is always
// present and always last.
func (r *Registry) Selectable() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		if d := r.entries[id].desc; d.Available {
			out = append(out, d)
		}
	}
	return out
}
