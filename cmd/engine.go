package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/artifact"
	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/detect"
	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/kozaktomas/photo-faces/internal/photometa"
	"github.com/kozaktomas/photo-faces/internal/pipeline"
	"github.com/kozaktomas/photo-faces/internal/store"
	"github.com/kozaktomas/photo-faces/internal/store/postgres"
	"github.com/kozaktomas/photo-faces/internal/thumbnail"
)

// engine bundles the assembled components shared by the serve and process
// commands.
type engine struct {
	cfg       *config.Config
	store     identity.Store
	processor *pipeline.Processor
	artifacts artifact.Store
	detector  *detect.Orchestrator

	closers []func() error
}

// close releases database connections held by the engine.
func (e *engine) close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			fmt.Printf("Warning: cleanup failed: %v\n", err)
		}
	}
}

// buildStore selects the identity store backend from configuration.
func buildStore(cfg *config.Config) (identity.Store, []func() error, error) {
	if cfg.Database.URL == "" {
		fmt.Println("WARNING: DATABASE_URL not set, using in-memory identity store (identities are lost on exit)")
		return store.NewMemory(), nil, nil
	}

	fmt.Println("Connecting to PostgreSQL database...")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	pool := postgres.GetGlobalPool()
	return postgres.NewIdentityRepository(pool), []func() error{pool.Close}, nil
}

// buildSink selects the photo metadata sink from configuration.
func buildSink(cfg *config.Config) (photometa.Sink, []func() error, error) {
	if cfg.PhotoDB.DSN == "" {
		fmt.Println("WARNING: PHOTO_DATABASE_URL not set, photo-face associations are logged only")
		return photometa.LogSink{}, nil, nil
	}

	sink, err := photometa.NewMariaDB(cfg.PhotoDB.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to photo database: %w", err)
	}
	return sink, []func() error{sink.Close}, nil
}

// buildEngine assembles the full face-processing engine. When initDetector is
// set, the detection service health check runs immediately and its failure is
// fatal; otherwise detector init is deferred to first use.
func buildEngine(ctx context.Context, cfg *config.Config, initDetector bool) (*engine, error) {
	e := &engine{cfg: cfg}

	st, closers, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	e.store = st
	e.closers = append(e.closers, closers...)

	sink, closers, err := buildSink(cfg)
	if err != nil {
		e.close()
		return nil, err
	}
	e.closers = append(e.closers, closers...)

	artifacts, err := artifact.NewDisk(cfg.Artifact.Dir)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}
	e.artifacts = artifacts

	e.detector = detect.NewOrchestrator(&cfg.Detector)
	if initDetector {
		if err := e.detector.Init(ctx); err != nil {
			e.close()
			return nil, fmt.Errorf("face detection service is not available: %w", err)
		}
	}

	thresholds := identity.Thresholds{
		SingleSample:  cfg.Matching.Thresholds.SingleSample,
		FewSamples:    cfg.Matching.Thresholds.FewSamples,
		ManySamples:   cfg.Matching.Thresholds.ManySamples,
		ManySamplesAt: cfg.Matching.ManySamplesAt,
	}
	matcher := identity.NewMatcher(st, thresholds)

	e.processor = pipeline.NewProcessor(e.detector, st, matcher, thumbnail.NewExtractor(), artifacts, sink)
	return e, nil
}
