// Package media provides the media engine that performs demuxing, decoding,
// filtering and encoding on behalf of a session.
package media

import (
	"context"
	"fmt"
)

// Status codes reported by engines when no process exit status applies.
// Engine status codes are always negative on failure.
const (
	// CodeGeneric is reported for failures without a more specific code.
	CodeGeneric = -1
	// CodeBadHandle is reported when a handle is unknown or already released.
	CodeBadHandle = -9
	// CodeNoStream is reported when the source has no video stream.
	CodeNoStream = -61
)

// Handle is an opaque reference to a source opened by an Engine.
// The zero Handle never refers to an open source.
type Handle uint64

// Probe holds the intrinsic properties an engine reports for a source.
type Probe struct {
	Width  int
	Height int
	// Rotation is the display rotation in degrees, normalised to [0, 360).
	Rotation float64
}

// Engine defines the operations a session drives against a media engine.
// Implementations must not retain any resource when Open fails, and Release
// must be safe to call with an unknown or already released handle.
type Engine interface {
	// Open opens the source at path and reports its properties.
	Open(ctx context.Context, path string) (Handle, Probe, error)

	// Transcode re-encodes the source to outputPath scaled to width x height.
	Transcode(ctx context.Context, h Handle, outputPath string, width, height int) error

	// CropTranscode re-encodes the width x height region at (x, y) of the
	// source to outputPath.
	CropTranscode(ctx context.Context, h Handle, outputPath string, x, y, width, height int) error

	// Release frees the resources behind h.
	Release(h Handle)
}

// EngineError represents a failed engine call, including the raw status code
// and the stderr output when a process was involved.
type EngineError struct {
	Op     string
	Code   int
	Args   []string
	Stderr string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("engine %s failed (code %d): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("engine %s failed (code %d): %v\nargs: %v\nstderr: %s", e.Op, e.Code, e.Err, e.Args, e.Stderr)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
