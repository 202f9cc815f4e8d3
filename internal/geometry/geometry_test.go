package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSentinel(t *testing.T) {
	tests := []struct {
		input   int
		want    Dimension
		wantErr bool
	}{
		{-1, Auto(), false},
		{0, KeepOriginal(), false},
		{720, Explicit(720), false},
		{-2, Dimension{}, true},
		{math.MinInt, Dimension{}, true},
	}

	for _, tt := range tests {
		t.Run(Explicit(tt.input).String(), func(t *testing.T) {
			got, err := FromSentinel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidGeometry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.Sentinel())
		})
	}
}

func TestDimension_ZeroValueKeepsOriginal(t *testing.T) {
	var d Dimension
	assert.True(t, d.IsKeep())
	assert.False(t, d.IsAuto())
	_, explicit := d.Value()
	assert.False(t, explicit)
}

func TestResolveScale(t *testing.T) {
	hd := Size{Width: 1920, Height: 1080}

	tests := []struct {
		name string
		src  Size
		w, h Dimension
		want Size
	}{
		{"auto width from height", hd, Auto(), Explicit(540), Size{960, 540}},
		{"auto height from width", hd, Explicit(1280), Auto(), Size{1280, 720}},
		{"both auto keeps source", hd, Auto(), Auto(), Size{1920, 1080}},
		{"both explicit used as is", hd, Explicit(800), Explicit(600), Size{800, 600}},
		{"keep width explicit height", hd, KeepOriginal(), Explicit(500), Size{1920, 500}},
		{"explicit width keep height", hd, Explicit(640), KeepOriginal(), Size{640, 1080}},
		{"both keep", hd, KeepOriginal(), KeepOriginal(), Size{1920, 1080}},
		{"auto against keep", hd, Auto(), KeepOriginal(), Size{1920, 1080}},
		{"rounds to nearest", Size{1000, 333}, Explicit(100), Auto(), Size{100, 33}},
		{"rounds half up", Size{3, 2}, Auto(), Explicit(1), Size{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveScale(tt.src, tt.w, tt.h)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveScale_Errors(t *testing.T) {
	hd := Size{Width: 1920, Height: 1080}

	tests := []struct {
		name    string
		src     Size
		w, h    Dimension
		wantErr error
	}{
		{"auto with unknown source", Size{}, Auto(), Explicit(540), ErrUnknownSource},
		{"auto height with unknown source", Size{Width: 100}, Explicit(50), Auto(), ErrUnknownSource},
		{"explicit zero", hd, Explicit(0), Explicit(100), ErrInvalidGeometry},
		{"explicit negative", hd, Explicit(-5), Explicit(100), ErrInvalidGeometry},
		{"auto against negative", hd, Auto(), Explicit(-3), ErrInvalidGeometry},
		{"keep against unknown axis", Size{Width: 100}, Explicit(50), KeepOriginal(), ErrInvalidGeometry},
		{"rounds to zero", Size{1000, 1}, Explicit(1), Auto(), ErrInvalidGeometry},
		{"derived height overflows", hd, Explicit(math.MaxInt), Auto(), ErrInvalidGeometry},
		{"derived width overflows", hd, Auto(), Explicit(math.MaxInt32), ErrInvalidGeometry},
		{"both auto unknown source", Size{}, Auto(), Auto(), ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveScale(tt.src, tt.w, tt.h)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRect_Within(t *testing.T) {
	square := Size{Width: 200, Height: 200}

	t.Run("inside bounds", func(t *testing.T) {
		assert.NoError(t, Rect{X: 100, Y: 100, Width: 50, Height: 50}.Within(square))
	})

	t.Run("touches far edges", func(t *testing.T) {
		assert.NoError(t, Rect{X: 150, Y: 150, Width: 50, Height: 50}.Within(square))
		assert.NoError(t, Rect{Width: 200, Height: 200}.Within(square))
	})

	t.Run("exceeds right bound", func(t *testing.T) {
		err := Rect{X: 190, Y: 0, Width: 50, Height: 50}.Within(square)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("exceeds bottom bound", func(t *testing.T) {
		err := Rect{X: 0, Y: 151, Width: 50, Height: 50}.Within(square)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("wider than source", func(t *testing.T) {
		err := Rect{Width: 201, Height: 10}.Within(square)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("no overflow on huge origin", func(t *testing.T) {
		err := Rect{X: math.MaxInt, Width: 10, Height: 10}.Within(square)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, r := range []Rect{
			{X: -1, Y: 0, Width: 10, Height: 10},
			{X: 0, Y: -1, Width: 10, Height: 10},
			{Width: 0, Height: 10},
			{Width: 10, Height: -4},
		} {
			err := r.Within(square)
			assert.ErrorIs(t, err, ErrMalformedRect, r.String())
			assert.NotErrorIs(t, err, ErrInvalidGeometry, r.String())
		}
	})
}
