// Package session provides the controlled lifecycle over a single media file:
// open it, inspect its properties, run one of the destructive transforms and
// release the engine resources.
//
// A Session is not safe for concurrent use. Callers serialize access; the
// Registry only guards construction of the shared instance.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/maauso/mediasession/internal/geometry"
	"github.com/maauso/mediasession/internal/media"
)

// Operation names reported to observers and carried in errors.
const (
	OpOpen     = "open"
	OpCompress = "compress"
	OpCrop     = "crop"
	OpRelease  = "release"
)

// Session mediates all operations on one source against a media engine.
// The engine handle is held exactly while the state is StateOpened.
type Session struct {
	engine   media.Engine
	logger   *slog.Logger
	observer Observer

	state      State
	sourcePath string
	props      Properties
	handle     media.Handle
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the observer notified of every operation.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// New creates a Session in StateClosed.
func New(engine media.Engine, opts ...Option) *Session {
	s := &Session{
		engine: engine,
		logger: slog.Default(),
		state:  StateClosed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// SourcePath returns the path given to a successful Open, or "".
func (s *Session) SourcePath() string { return s.sourcePath }

// Properties returns a copy of the cached source properties.
func (s *Session) Properties() Properties { return s.props }

// Width returns the source width, or 0 before a successful Open.
func (s *Session) Width() int { return s.props.Width }

// Height returns the source height, or 0 before a successful Open.
func (s *Session) Height() int { return s.props.Height }

// Rotation returns the source rotation in degrees, or 0 before a successful Open.
func (s *Session) Rotation() float64 { return s.props.RotationDegrees }

// Open opens the source at path and caches its properties.
// On failure the session stays in StateClosed and holds no engine resource.
func (s *Session) Open(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { s.observe(OpOpen, start, err) }()

	if s.state != StateClosed {
		return s.reject(newError(OpOpen, ErrInvalidState, fmt.Errorf("session is %s", s.state)))
	}
	if path == "" {
		return s.reject(newError(OpOpen, ErrInvalidArgument, errEmptyPath))
	}
	if err := checkReadable(path); err != nil {
		return s.reject(newError(OpOpen, ErrNotFound, err))
	}

	h, probe, err := s.engine.Open(ctx, path)
	if err != nil {
		return s.fail(engineError(OpOpen, err))
	}

	s.handle = h
	s.sourcePath = path
	s.props = Properties{
		Width:           probe.Width,
		Height:          probe.Height,
		RotationDegrees: probe.Rotation,
	}
	s.transition(StateOpened)

	s.logger.Info("source opened",
		slog.String("path", path),
		slog.Int("width", probe.Width),
		slog.Int("height", probe.Height),
		slog.Float64("rotation", probe.Rotation),
	)
	return nil
}

// Compress re-encodes the source to outputPath at the size resolved from
// width and height against the source dimensions. It blocks until the engine
// finishes. A failed call leaves no file at outputPath.
func (s *Session) Compress(ctx context.Context, outputPath string, width, height geometry.Dimension) (err error) {
	start := time.Now()
	defer func() { s.observe(OpCompress, start, err) }()

	if err := s.checkTransform(OpCompress, outputPath); err != nil {
		return s.reject(err)
	}

	size, err := geometry.ResolveScale(s.props.Size(), width, height)
	if err != nil {
		return s.reject(geometryError(OpCompress, err))
	}

	err = s.transform(ctx, OpCompress, outputPath, func(staged string) error {
		return s.engine.Transcode(ctx, s.handle, staged, size.Width, size.Height)
	})
	if err != nil {
		return err
	}

	s.logger.Info("source compressed",
		slog.String("output", outputPath),
		slog.Int("requested_width", width.Sentinel()),
		slog.Int("requested_height", height.Sentinel()),
		slog.String("size", size.String()),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Crop re-encodes the region rect of the source to outputPath. The rectangle
// must lie entirely inside the source frame. It blocks until the engine
// finishes. A failed call leaves no file at outputPath.
func (s *Session) Crop(ctx context.Context, outputPath string, rect geometry.Rect) (err error) {
	start := time.Now()
	defer func() { s.observe(OpCrop, start, err) }()

	if err := s.checkTransform(OpCrop, outputPath); err != nil {
		return s.reject(err)
	}
	if err := rect.Within(s.props.Size()); err != nil {
		return s.reject(geometryError(OpCrop, err))
	}

	err = s.transform(ctx, OpCrop, outputPath, func(staged string) error {
		return s.engine.CropTranscode(ctx, s.handle, staged, rect.X, rect.Y, rect.Width, rect.Height)
	})
	if err != nil {
		return err
	}

	s.logger.Info("source cropped",
		slog.String("output", outputPath),
		slog.String("rect", rect.String()),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Release releases the engine handle and moves the session to StateReleased.
// It is idempotent and never fails.
func (s *Session) Release() {
	if s.state == StateReleased {
		return
	}
	start := time.Now()

	if s.state == StateOpened {
		s.engine.Release(s.handle)
		s.handle = 0
	}
	s.transition(StateReleased)

	s.logger.Info("session released", slog.String("path", s.sourcePath))
	s.observe(OpRelease, start, nil)
}

// checkTransform validates lifecycle state and the output path shared by
// Compress and Crop. Every check here runs before the engine is invoked.
func (s *Session) checkTransform(op, outputPath string) *Error {
	if s.state != StateOpened {
		return newError(op, ErrInvalidState, fmt.Errorf("session is %s", s.state))
	}
	if outputPath == "" {
		return newError(op, ErrInvalidArgument, fmt.Errorf("output %w", errEmptyPath))
	}
	if samePath(outputPath, s.sourcePath) {
		return newError(op, ErrInvalidArgument, fmt.Errorf("output %s would overwrite the source", outputPath))
	}
	if err := checkOutputTarget(outputPath); err != nil {
		return newError(op, ErrInvalidArgument, err)
	}
	return nil
}

// transform runs the engine against a staged file and moves it onto
// outputPath only when the engine succeeds.
func (s *Session) transform(ctx context.Context, op, outputPath string, run func(staged string) error) error {
	staged, err := stageOutput(outputPath)
	if err != nil {
		return s.reject(newError(op, ErrInvalidArgument, err))
	}

	if err := run(staged); err != nil {
		discardOutput(staged)
		return s.fail(engineError(op, err))
	}

	if err := commitOutput(staged, outputPath); err != nil {
		return s.fail(newError(op, ErrOutput, err))
	}
	return nil
}

func (s *Session) transition(to State) {
	if !canTransition(s.state, to) {
		// Callers check state first; reaching this is a programming error.
		panic(fmt.Sprintf("session: invalid transition %s -> %s", s.state, to))
	}
	s.state = to
}

func (s *Session) reject(err *Error) error {
	s.logger.Warn("session operation rejected",
		slog.String("op", err.Op),
		slog.String("kind", KindOf(err).String()),
		slog.String("error", err.Error()),
	)
	return err
}

func (s *Session) fail(err *Error) error {
	s.logger.Error("session operation failed",
		slog.String("op", err.Op),
		slog.String("kind", KindOf(err).String()),
		slog.Int("code", err.Code),
		slog.String("error", err.Error()),
	)
	return err
}

func (s *Session) observe(op string, start time.Time, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(op, time.Since(start), err)
	s.observer.ObserveState(s.state)
}

func samePath(a, b string) bool {
	if b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
