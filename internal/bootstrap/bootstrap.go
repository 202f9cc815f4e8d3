// Package bootstrap provides dependency initialization for the media session service.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/mediasession/internal/config"
	"github.com/maauso/mediasession/internal/media"
	"github.com/maauso/mediasession/internal/metrics"
	"github.com/maauso/mediasession/internal/session"
	"github.com/maauso/mediasession/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Engine   *media.FFmpegEngine
	Registry *session.Registry
	Storage  storage.Storage
}

// NewDependencies creates and initializes all dependencies for the application.
// It fails when the media engine binaries cannot be resolved.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Drop staging files from transforms interrupted by a previous shutdown.
	swept, err := storage.SweepPartials(ctx, store)
	if err != nil {
		logger.Warn("failed to sweep partial outputs", slog.String("error", err.Error()))
	} else if swept > 0 {
		logger.Info("swept partial outputs", slog.Int("count", swept))
	}

	engine := media.NewFFmpegEngine(cfg.FFmpegPath, cfg.FFprobePath)
	if err := engine.Init(ctx); err != nil {
		return nil, fmt.Errorf("initialize media engine: %w", err)
	}
	logger.Info("media engine initialized",
		slog.String("ffmpeg", cfg.FFmpegPath),
		slog.String("ffprobe", cfg.FFprobePath),
	)

	return &Dependencies{
		Engine:   engine,
		Registry: newRegistry(engine, logger),
		Storage:  store,
	}, nil
}

// Close releases the shared session, if one was opened.
func (d *Dependencies) Close() {
	d.Registry.Reset()
}

// newRegistry builds the registry whose sessions share the engine, logger
// and Prometheus observer.
func newRegistry(engine media.Engine, logger *slog.Logger) *session.Registry {
	observer := metrics.NewSessionObserver()
	return session.NewRegistry(func() *session.Session {
		return session.New(engine,
			session.WithLogger(logger),
			session.WithObserver(observer),
		)
	})
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.OutputDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.String("output_dir", s3Store.OutputDir()),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("output_dir", localStore.OutputDir()),
	)
	return localStore, nil
}
