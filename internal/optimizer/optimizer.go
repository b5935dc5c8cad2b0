// Package optimizer is the optional pre-pass that shrinks the source
// document before chunk planning. The planner treats its output as just
// another input document.
package optimizer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfchunker/internal/pdf"
)

// ImageQuality selects the recompression quality tier for embedded
// images.
type ImageQuality string

const (
	QualityHigh   ImageQuality = "high"
	QualityMedium ImageQuality = "medium"
	QualityLow    ImageQuality = "low"
	QualityScreen ImageQuality = "screen"
)

// Options control the optimization pass.
type Options struct {
	CompressImages  bool
	ImageQuality    ImageQuality
	RemoveMetadata  bool
	CompressStreams bool
}

// Stats reports what the pass achieved. Skipped lists requested
// options the engine could not honor.
type Stats struct {
	OriginalSize     int64
	FinalSize        int64
	ReductionPercent float64
	Skipped          []string
}

// Progress is invoked synchronously as the pass advances. May be nil.
type Progress func(current, total int, label string)

// OptimizationError means the pre-pass failed. It is recoverable: the
// caller falls back to the unoptimized document and continues.
type OptimizationError struct {
	Err error
}

func (e *OptimizationError) Error() string { return fmt.Sprintf("optimize: %v", e.Err) }
func (e *OptimizationError) Unwrap() error { return e.Err }

// Optimize runs pdfcpu's optimization over doc and returns the
// optimized document with its stats. The source document is untouched.
//
// The embedded engine prunes unreferenced and duplicate objects and,
// with CompressStreams, packs objects into compressed object/xref
// streams. Image recompression and metadata stripping are not supported
// by this engine; those options are accepted for the capability
// contract and reported as skipped.
func Optimize(ctx context.Context, doc *pdf.Document, opts Options, progress Progress) (*pdf.Document, Stats, error) {
	report := func(cur, total int, label string) {
		if progress != nil {
			progress(cur, total, label)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, Stats{}, &OptimizationError{Err: err}
	}
	report(1, 3, "preparing")

	skipped := skippedOptions(opts)
	if len(skipped) > 0 {
		log.Info().
			Strs("options", skipped).
			Str("image_quality", string(opts.ImageQuality)).
			Msg("options not supported by the embedded optimizer; skipped")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = opts.CompressStreams
	conf.WriteXRefStream = opts.CompressStreams

	report(2, 3, "optimizing")
	var buf bytes.Buffer
	if err := api.Optimize(doc.NewReader(), &buf, conf); err != nil {
		return nil, Stats{}, &OptimizationError{Err: err}
	}

	optimized, err := pdf.FromBytes(doc.Name(), buf.Bytes())
	if err != nil {
		return nil, Stats{}, &OptimizationError{Err: err}
	}
	report(3, 3, "done")

	stats := Stats{
		OriginalSize: doc.Size(),
		FinalSize:    optimized.Size(),
		Skipped:      skipped,
	}
	stats.ReductionPercent = reductionPercent(stats.OriginalSize, stats.FinalSize)
	return optimized, stats, nil
}

// skippedOptions names the requested options the embedded engine does
// not implement: it prunes objects and packs streams but cannot
// recompress images or strip metadata.
func skippedOptions(opts Options) []string {
	var skipped []string
	if opts.CompressImages {
		skipped = append(skipped, "compress_images")
	}
	if opts.RemoveMetadata {
		skipped = append(skipped, "remove_metadata")
	}
	return skipped
}

func reductionPercent(original, final int64) float64 {
	if original <= 0 {
		return 0
	}
	return (1 - float64(final)/float64(original)) * 100
}
