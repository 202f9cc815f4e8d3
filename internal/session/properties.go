package session

import "github.com/maauso/mediasession/internal/geometry"

// Properties holds the intrinsic metadata of the open source. Fields read as
// zero until a successful Open and are not changed afterwards.
type Properties struct {
	Width  int
	Height int
	// RotationDegrees is the display rotation reported by the engine,
	// typically 0, 90, 180 or 270.
	RotationDegrees float64
}

// Size returns the source dimensions.
func (p Properties) Size() geometry.Size {
	return geometry.Size{Width: p.Width, Height: p.Height}
}
