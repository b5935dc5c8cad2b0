package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfchunker/internal/codec"
	cfgpkg "github.com/local/pdfchunker/internal/config"
	logpkg "github.com/local/pdfchunker/internal/logger"
	"github.com/local/pdfchunker/internal/metrics"
	"github.com/local/pdfchunker/internal/optimizer"
	"github.com/local/pdfchunker/internal/orchestrator"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	// Positional argument wins over INPUT_PDF.
	if len(os.Args) > 1 {
		cfg.Job.InputPath = os.Args[1]
	}

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	if cfg.Job.InputPath == "" {
		log.Fatal().Msg("no input file: pass a path or set INPUT_PDF")
	}

	metrics.Init()
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listener started")
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	reg := codec.NewRegistry()
	var ids []string
	for _, d := range reg.Selectable() {
		ids = append(ids, d.ID)
	}
	log.Info().Strs("codecs", ids).Msg("codec registry ready")

	var optOpts *optimizer.Options
	if cfg.Optimize.Enabled {
		optOpts = &optimizer.Options{
			CompressImages:  cfg.Optimize.CompressImages,
			ImageQuality:    optimizer.ImageQuality(cfg.Optimize.ImageQuality),
			RemoveMetadata:  cfg.Optimize.RemoveMetadata,
			CompressStreams: cfg.Optimize.CompressStreams,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := orchestrator.New(reg).Run(ctx, orchestrator.Config{
		InputPath:           cfg.Job.InputPath,
		TargetBytes:         cfg.Job.TargetBytes,
		CodecID:             cfg.Job.CodecID,
		OutputDir:           cfg.Job.OutputDir,
		Optimize:            optOpts,
		MinReductionPercent: cfg.Job.MinReductionPercent,
		VerifyChunks:        cfg.Job.VerifyChunks,
		S3UploadURL:         cfg.Job.S3UploadURL,
		ArtifactPassword:    cfg.Job.ArtifactPassword,
	})
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		logpkg.Close()
		os.Exit(1)
	}
	if sum.Failed > 0 {
		log.Error().Int("failed", sum.Failed).Msg("run finished with failed chunks")
		logpkg.Close()
		os.Exit(1)
	}
}
