// Package geometry resolves output dimensions for scale requests and validates
// crop rectangles against source bounds. It is pure and performs no I/O.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Static errors for geometry resolution.
var (
	// ErrInvalidGeometry is returned when a request cannot resolve to a
	// strictly positive output size, or a crop rectangle leaves the source.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrMalformedRect is returned when a crop rectangle has a negative origin
	// or a non-positive size.
	ErrMalformedRect = errors.New("malformed crop rectangle")
	// ErrUnknownSource is returned when proportional scaling is requested but
	// the source dimensions are not known yet.
	ErrUnknownSource = errors.New("source dimensions unknown")
)

// Integer sentinels accepted by FromSentinel.
const (
	SentinelAuto = -1
	SentinelKeep = 0
)

type dimensionKind uint8

const (
	kindExplicit dimensionKind = iota
	kindAuto
	kindKeep
)

// Dimension is one axis of a scale request. The zero value is KeepOriginal.
type Dimension struct {
	kind  dimensionKind
	value int
}

// Auto derives the axis from the other axis using the source aspect ratio.
func Auto() Dimension { return Dimension{kind: kindAuto} }

// KeepOriginal keeps the source value for the axis.
func KeepOriginal() Dimension { return Dimension{kind: kindKeep} }

// Explicit requests a concrete pixel value. Non-positive values are rejected
// at resolution time.
func Explicit(v int) Dimension { return Dimension{kind: kindExplicit, value: v} }

// FromSentinel converts the integer contract (-1 auto, 0 keep, >0 explicit)
// into a Dimension. Any other negative value is rejected.
func FromSentinel(v int) (Dimension, error) {
	switch {
	case v == SentinelAuto:
		return Auto(), nil
	case v == SentinelKeep:
		return KeepOriginal(), nil
	case v > 0:
		return Explicit(v), nil
	default:
		return Dimension{}, fmt.Errorf("%w: axis value %d", ErrInvalidGeometry, v)
	}
}

// IsAuto reports whether d derives from the other axis.
func (d Dimension) IsAuto() bool { return d.kind == kindAuto }

// IsKeep reports whether d keeps the source value.
func (d Dimension) IsKeep() bool { return d.kind == kindKeep }

// Value returns the explicit pixel value and whether d is explicit.
func (d Dimension) Value() (int, bool) { return d.value, d.kind == kindExplicit }

// Sentinel returns the integer form of d.
func (d Dimension) Sentinel() int {
	switch d.kind {
	case kindAuto:
		return SentinelAuto
	case kindKeep:
		return SentinelKeep
	default:
		return d.value
	}
}

func (d Dimension) String() string {
	switch d.kind {
	case kindAuto:
		return "auto"
	case kindKeep:
		return "keep"
	default:
		return fmt.Sprintf("%d", d.value)
	}
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Known reports whether both axes are strictly positive.
func (s Size) Known() bool { return s.Width > 0 && s.Height > 0 }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// ResolveScale computes the concrete output size for a scale request against
// the source size.
//
// KeepOriginal axes take the source value. When exactly one axis is Auto it is
// computed as round(other * srcAuto / srcOther), which needs a known source.
// Both axes Auto yields the source size. The result must be strictly positive.
func ResolveScale(src Size, w, h Dimension) (Size, error) {
	if w.IsAuto() && h.IsAuto() {
		return positive(src, w, h)
	}

	out := Size{Width: axis(w, src.Width), Height: axis(h, src.Height)}

	switch {
	case w.IsAuto():
		if !src.Known() {
			return Size{}, fmt.Errorf("%w: cannot derive width from %s", ErrUnknownSource, src)
		}
		if out.Height <= 0 {
			return Size{}, fmt.Errorf("%w: width auto with height %s", ErrInvalidGeometry, h)
		}
		w, err := proportional(out.Height, src.Width, src.Height)
		if err != nil {
			return Size{}, err
		}
		out.Width = w
	case h.IsAuto():
		if !src.Known() {
			return Size{}, fmt.Errorf("%w: cannot derive height from %s", ErrUnknownSource, src)
		}
		if out.Width <= 0 {
			return Size{}, fmt.Errorf("%w: height auto with width %s", ErrInvalidGeometry, w)
		}
		h, err := proportional(out.Width, src.Height, src.Width)
		if err != nil {
			return Size{}, err
		}
		out.Height = h
	}

	return positive(out, w, h)
}

// axis returns the concrete value of d, the source value for Keep, and 0 for Auto.
func axis(d Dimension, src int) int {
	if v, ok := d.Value(); ok {
		return v
	}
	if d.IsKeep() {
		return src
	}
	return 0
}

// proportional scales given by srcThis/srcGiven, rounding to nearest.
// Results beyond MaxInt32 are rejected before the float-to-int conversion.
func proportional(given, srcThis, srcGiven int) (int, error) {
	v := math.Round(float64(given) * float64(srcThis) / float64(srcGiven))
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: derived axis %.0f out of range", ErrInvalidGeometry, v)
	}
	return int(v), nil
}

func positive(s Size, w, h Dimension) (Size, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return Size{}, fmt.Errorf("%w: request %s x %s resolves to %s", ErrInvalidGeometry, w, h, s)
	}
	return s, nil
}

// Rect is a crop rectangle covering [X, X+Width) x [Y, Y+Height).
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Validate checks the rectangle's own shape: non-negative origin and strictly
// positive size.
func (r Rect) Validate() error {
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("%w: negative origin in %s", ErrMalformedRect, r)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: non-positive size in %s", ErrMalformedRect, r)
	}
	return nil
}

// Within checks that the rectangle is well formed and lies entirely inside
// [0, src.Width) x [0, src.Height).
func (r Rect) Within(src Size) error {
	if err := r.Validate(); err != nil {
		return err
	}
	// Compare against the remaining extent so X+Width cannot overflow.
	if r.Width > src.Width || r.X > src.Width-r.Width {
		return fmt.Errorf("%w: %s exceeds source width %d", ErrInvalidGeometry, r, src.Width)
	}
	if r.Height > src.Height || r.Y > src.Height-r.Height {
		return fmt.Errorf("%w: %s exceeds source height %d", ErrInvalidGeometry, r, src.Height)
	}
	return nil
}
