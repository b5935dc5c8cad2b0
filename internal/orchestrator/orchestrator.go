// Package orchestrator sequences one chunking run: optional optimize,
// plan, materialize chunks, compress, clean up, report.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfchunker/internal/codec"
	"github.com/local/pdfchunker/internal/filetype"
	"github.com/local/pdfchunker/internal/metrics"
	"github.com/local/pdfchunker/internal/optimizer"
	"github.com/local/pdfchunker/internal/pdf"
	"github.com/local/pdfchunker/internal/pdfcheck"
	"github.com/local/pdfchunker/internal/planner"
	"github.com/local/pdfchunker/internal/storage"
)

// Config describes one run.
type Config struct {
	InputPath   string
	TargetBytes int64
	CodecID     string
	// OutputDir overrides the default "<input dir>/<base>_chunks".
	OutputDir string
	// Optimize enables the pre-pass; nil skips it.
	Optimize *optimizer.Options
	// MinReductionPercent discards an optimization result that saved
	// less than this much. Zero means the 1.0 default.
	MinReductionPercent float64
	// VerifyChunks re-opens each written chunk with an independent
	// engine before compressing it.
	VerifyChunks bool
	// S3UploadURL (s3://bucket/prefix) delivers final artifacts;
	// ArtifactPassword additionally encrypts them.
	S3UploadURL      string
	ArtifactPassword string
}

// ChunkReport is the outcome for one chunk.
type ChunkReport struct {
	Chunk            planner.Chunk
	File             string
	UncompressedSize int64
	CompressedSize   int64
	ArtifactPath     string
	RemoteURL        string
	Err              error
}

// Summary aggregates a whole run. Per-chunk failures are collected
// here instead of aborting chunks that already succeeded.
type Summary struct {
	JobID             string
	Input             string
	TotalPages        int
	TargetBytes       int64
	CodecID           string
	Optimized         bool
	OptimizeStats     *optimizer.Stats
	OutputDir         string
	Chunks            []ChunkReport
	Failed            int
	TotalUncompressed int64
	TotalCompressed   int64
	ReductionPercent  float64
	Duration          time.Duration
}

// document is the slice of pdf.Document the run consumes. Swappable
// the same way pdfcheck swaps its Opener.
type document interface {
	Name() string
	PageCount() int
	Size() int64
	MeasurePages(ctx context.Context, pages []int) (int64, error)
	WriteRange(start, end int, path string) (int64, error)
}

// Orchestrator runs chunking jobs against one codec registry.
type Orchestrator struct {
	reg  *codec.Registry
	comp *codec.Compressor

	load     func(path string) (document, error)
	optimize func(ctx context.Context, doc document, opts optimizer.Options, progress optimizer.Progress) (document, optimizer.Stats, error)
}

// New returns an Orchestrator dispatching compression through reg.
func New(reg *codec.Registry) *Orchestrator {
	return &Orchestrator{
		reg:  reg,
		comp: codec.NewCompressor(reg),
		load: func(path string) (document, error) {
			return pdf.Load(path)
		},
		optimize: func(ctx context.Context, doc document, opts optimizer.Options, progress optimizer.Progress) (document, optimizer.Stats, error) {
			return optimizer.Optimize(ctx, doc.(*pdf.Document), opts, progress)
		},
	}
}

// countingMeasurer forwards measurements and counts them.
type countingMeasurer struct {
	m planner.Measurer
}

func (c countingMeasurer) MeasurePages(ctx context.Context, pages []int) (int64, error) {
	metrics.IncMeasurement()
	return c.m.MeasurePages(ctx, pages)
}

// Run executes one chunking run. Planning-phase errors abort the whole
// run; per-chunk compression/write errors are isolated and reported in
// the Summary.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*Summary, error) {
	start := time.Now()
	jobID := uuid.NewString()
	logger := log.With().Str("job_id", jobID).Logger()

	if cfg.TargetBytes <= 0 {
		return nil, fmt.Errorf("target bytes must be positive, got %d", cfg.TargetBytes)
	}
	if cfg.CodecID == "" {
		cfg.CodecID = codec.None
	}
	desc, ok := o.reg.Lookup(cfg.CodecID)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", cfg.CodecID)
	}
	if !desc.Available {
		return nil, &codec.UnavailableError{ID: cfg.CodecID, Err: fmt.Errorf("not selectable")}
	}
	minReduction := cfg.MinReductionPercent
	if minReduction == 0 {
		minReduction = 1.0
	}

	var s3c *storage.S3Client
	var s3prefix string
	if cfg.S3UploadURL != "" {
		bucket, prefix, err := storage.ParseURL(cfg.S3UploadURL)
		if err != nil {
			return nil, err
		}
		c, err := storage.NewS3Client(ctx, bucket)
		if err != nil {
			return nil, err
		}
		s3c, s3prefix = c, prefix
	}

	if err := filetype.EnsurePDF(cfg.InputPath); err != nil {
		return nil, err
	}
	doc, err := o.load(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("file", cfg.InputPath).Int("pages", doc.PageCount()).
		Str("size", FormatSize(doc.Size())).Str("target", FormatSize(cfg.TargetBytes)).
		Str("codec", cfg.CodecID).Msg("run started")

	sum := &Summary{
		JobID:       jobID,
		Input:       cfg.InputPath,
		TargetBytes: cfg.TargetBytes,
		CodecID:     cfg.CodecID,
	}

	// Optional pre-pass. Failure falls back to the original document;
	// a result below the reduction threshold is discarded.
	if cfg.Optimize != nil {
		optimized, stats, oerr := o.optimize(ctx, doc, *cfg.Optimize, func(cur, total int, label string) {
			logger.Debug().Int("step", cur).Int("of", total).Str("label", label).Msg("optimizing")
		})
		switch {
		case oerr != nil:
			logger.Warn().Err(oerr).Msg("optimization failed; continuing with original document")
		case stats.ReductionPercent < minReduction:
			logger.Info().Float64("reduction_percent", stats.ReductionPercent).
				Float64("threshold", minReduction).Msg("optimization below threshold; discarded")
		default:
			logger.Info().Str("before", FormatSize(stats.OriginalSize)).
				Str("after", FormatSize(stats.FinalSize)).
				Float64("reduction_percent", stats.ReductionPercent).Msg("optimized")
			doc = optimized
			sum.Optimized = true
			sum.OptimizeStats = &stats
		}
	}
	sum.TotalPages = doc.PageCount()

	obs := planner.Observer{
		PageAccepted: func(page int, chunkSize int64) {
			metrics.IncPageAccepted()
			logger.Debug().Int("page", page+1).Str("chunk_size", FormatSize(chunkSize)).Msg("page accepted")
		},
		ChunkClosed: func(c planner.Chunk) {
			metrics.IncChunkPlanned()
			logger.Info().Stringer("chunk", c).Str("size", FormatSize(c.Size)).Msg("chunk planned")
		},
	}
	chunks, err := planner.New(countingMeasurer{doc}, obs).Plan(ctx, doc.PageCount(), cfg.TargetBytes)
	if err != nil {
		return nil, err
	}

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(cfg.InputPath), doc.Name()+"_chunks")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	sum.OutputDir = outDir

	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report := o.processChunk(ctx, logger, doc, cfg, c, i+1, outDir, s3c, s3prefix)
		if report.Err != nil {
			sum.Failed++
			metrics.ChunkCompressed(cfg.CodecID, "failed")
			logger.Error().Err(report.Err).Stringer("chunk", c).Msg("chunk failed")
		} else {
			metrics.ChunkCompressed(cfg.CodecID, "success")
			sum.TotalUncompressed += report.UncompressedSize
			sum.TotalCompressed += report.CompressedSize
		}
		sum.Chunks = append(sum.Chunks, report)
	}

	CleanupTemps(outDir, time.Hour)

	if sum.TotalUncompressed > 0 {
		sum.ReductionPercent = (1 - float64(sum.TotalCompressed)/float64(sum.TotalUncompressed)) * 100
	}
	metrics.SetRunReduction(sum.ReductionPercent)
	sum.Duration = time.Since(start)

	logger.Info().Int("chunks", len(sum.Chunks)).Int("failed", sum.Failed).
		Str("total", FormatSize(sum.TotalCompressed)).
		Float64("reduction_percent", sum.ReductionPercent).
		Str("output_dir", outDir).Dur("duration", sum.Duration).Msg("run complete")
	return sum, nil
}

// processChunk materializes, verifies, compresses and delivers one
// chunk. Any error is confined to this chunk.
func (o *Orchestrator) processChunk(ctx context.Context, logger zerolog.Logger, doc document,
	cfg Config, c planner.Chunk, num int, outDir string, s3c *storage.S3Client, s3prefix string) ChunkReport {

	report := ChunkReport{Chunk: c}
	name := chunkFileName(doc.Name(), num, c)
	report.File = name
	chunkPath := filepath.Join(outDir, name)

	// Write through a temp name so a crashed run never leaves a
	// half-written file that looks like a finished chunk.
	tmpPath := chunkPath + ".tmp"
	size, err := doc.WriteRange(c.Start, c.End, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		report.Err = fmt.Errorf("write chunk: %w", err)
		return report
	}
	if err := os.Rename(tmpPath, chunkPath); err != nil {
		os.Remove(tmpPath)
		report.Err = fmt.Errorf("finalize chunk: %w", err)
		return report
	}
	report.UncompressedSize = size
	logger.Info().Str("file", name).Int("pages", c.Pages()).Str("size", FormatSize(size)).Msg("chunk written")

	if cfg.VerifyChunks {
		if err := pdfcheck.Verify(chunkPath, c.Pages()); err != nil {
			report.Err = err
			return report
		}
	}

	res, err := o.comp.Compress(chunkPath, cfg.CodecID)
	if err != nil {
		report.Err = err
		return report
	}
	report.CompressedSize = res.Size
	report.ArtifactPath = res.Path
	logger.Info().Str("artifact", filepath.Base(res.Path)).Str("size", FormatSize(res.Size)).
		Float64("reduction_percent", res.Ratio()).Msg("chunk compressed")
	metrics.ObserveRatio(res.Ratio())

	// The uncompressed chunk is intermediate unless it is the final
	// artifact itself. A failed delete is logged, never fatal.
	if cfg.CodecID != codec.None {
		if err := os.Remove(chunkPath); err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("failed to delete intermediate chunk")
		}
	}

	if s3c != nil {
		url, err := s3c.UploadFile(ctx, s3prefix, res.Path, cfg.ArtifactPassword)
		if err != nil {
			// Artifact exists locally; delivery failure is not fatal.
			logger.Warn().Err(err).Str("artifact", res.Path).Msg("upload failed")
		} else {
			report.RemoteURL = url
		}
	}
	return report
}
