// Package storage provides the output location for transforms and optional
// publishing of finished outputs to S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/maauso/mediasession/internal/id"
)

// Storage defines where transform outputs live and how they are published.
type Storage interface {
	// OutputDir returns the directory relative output paths resolve under.
	OutputDir() string

	// ResolveOutput returns the absolute output path for name. Relative names
	// are joined under OutputDir; absolute names are returned cleaned.
	ResolveOutput(name string) (string, error)

	// CleanupTemp removes files. Missing files are ignored.
	CleanupTemp(ctx context.Context, paths []string) error

	// UploadToS3 uploads data to S3 under key and returns its URL.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}

// PartialPattern matches the staging files a transform leaves beside its
// output while the engine runs.
const PartialPattern = ".*.partial-*"

// SweepPartials removes staging files left in the output directory by a
// transform that was interrupted, and returns how many it found.
func SweepPartials(ctx context.Context, s Storage) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.OutputDir(), PartialPattern))
	if err != nil {
		return 0, fmt.Errorf("glob partial outputs: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}
	return len(matches), s.CleanupTemp(ctx, matches)
}

// Publish uploads the file at path under a generated key and returns its URL.
func Publish(ctx context.Context, s Storage, path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path is a committed transform output
	if err != nil {
		return "", fmt.Errorf("open output: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.UploadToS3(ctx, id.Generate("outputs", path), f)
}
