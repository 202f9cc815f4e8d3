package session

import (
	"errors"
	"fmt"

	"github.com/maauso/mediasession/internal/geometry"
	"github.com/maauso/mediasession/internal/media"
)

// Error kinds. Every error returned by a Session wraps exactly one of these,
// so callers can select with errors.Is.
var (
	// ErrInvalidArgument is returned for an empty path or malformed parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when the source file does not exist or cannot be read.
	ErrNotFound = errors.New("source not found")
	// ErrInvalidState is returned when the lifecycle state forbids the operation.
	ErrInvalidState = errors.New("invalid session state")
	// ErrInvalidGeometry is returned when scale or crop parameters do not fit the source.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrEngineFailure is returned when the media engine reports a failure.
	ErrEngineFailure = errors.New("media engine failure")
	// ErrOutput is returned when a finished output cannot be moved into place.
	ErrOutput = errors.New("output commit failed")
)

var errEmptyPath = errors.New("path must not be empty")

// Kind enumerates the error kinds for exhaustive switches.
type Kind int

const (
	// KindNone means the error is nil or not produced by a Session.
	KindNone Kind = iota
	KindInvalidArgument
	KindNotFound
	KindInvalidState
	KindInvalidGeometry
	KindEngineFailure
	KindOutput
)

var kindNames = map[Kind]string{
	KindNone:            "none",
	KindInvalidArgument: "invalid_argument",
	KindNotFound:        "not_found",
	KindInvalidState:    "invalid_state",
	KindInvalidGeometry: "invalid_geometry",
	KindEngineFailure:   "engine_failure",
	KindOutput:          "output",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf returns the kind of err, or KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrInvalidGeometry):
		return KindInvalidGeometry
	case errors.Is(err, ErrEngineFailure):
		return KindEngineFailure
	case errors.Is(err, ErrOutput):
		return KindOutput
	default:
		return KindNone
	}
}

// Error is the error type returned by Session operations.
type Error struct {
	// Op is the operation that failed: open, compress or crop.
	Op string
	// Kind is one of the Err* kind sentinels.
	Kind error
	// Code is the raw engine status for ErrEngineFailure, zero otherwise.
	Code int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Kind == ErrEngineFailure {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code returns the engine status code carried by err, and whether err is an
// engine failure.
func Code(err error) (int, bool) {
	var se *Error
	if errors.As(err, &se) && se.Kind == ErrEngineFailure {
		return se.Code, true
	}
	return 0, false
}

func newError(op string, kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// engineError wraps an engine failure, keeping its status code.
func engineError(op string, err error) *Error {
	code := media.CodeGeneric
	var engErr *media.EngineError
	if errors.As(err, &engErr) && engErr.Code < 0 {
		code = engErr.Code
	}
	return &Error{Op: op, Kind: ErrEngineFailure, Code: code, Err: err}
}

// geometryError maps geometry resolution errors onto session kinds.
func geometryError(op string, err error) *Error {
	switch {
	case errors.Is(err, geometry.ErrUnknownSource):
		return newError(op, ErrInvalidState, err)
	case errors.Is(err, geometry.ErrMalformedRect):
		return newError(op, ErrInvalidArgument, err)
	default:
		return newError(op, ErrInvalidGeometry, err)
	}
}
