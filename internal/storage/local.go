package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrS3NotConfigured is returned when S3 operations are attempted without S3 configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// LocalStorage implements Storage using the local filesystem only.
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a new LocalStorage with the specified output directory.
// If outputDir is empty, it uses the system's default temp directory with a
// "mediasession" subdirectory.
func NewLocalStorage(outputDir string) (*LocalStorage, error) {
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "mediasession")
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	return &LocalStorage{outputDir: abs}, nil
}

// OutputDir returns the output directory path.
func (s *LocalStorage) OutputDir() string {
	return s.outputDir
}

// ResolveOutput joins relative names under the output directory.
func (s *LocalStorage) ResolveOutput(name string) (string, error) {
	if name == "" {
		return "", errors.New("output name must not be empty")
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	path := filepath.Join(s.outputDir, name)
	rel, err := filepath.Rel(s.outputDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output %q escapes %s", name, s.outputDir)
	}
	return path, nil
}

// CleanupTemp removes the specified files.
// It ignores files that don't exist and continues on errors,
// returning the first error encountered.
func (s *LocalStorage) CleanupTemp(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// UploadToS3 returns ErrS3NotConfigured for local-only storage.
func (s *LocalStorage) UploadToS3(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}
