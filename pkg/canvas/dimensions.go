package canvas

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxExtent is the largest side a canvas is allowed to have.
// Graphics backends have trouble with really large surfaces.
const MaxExtent = 10000

// ErrInvalidDimensions is returned by the validating clamps.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Dimensions is a width/height pair of a rectangular surface.
type Dimensions struct {
	Width  int
	Height int
}

// String renders d as WxH.
func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Within reports whether neither side of d exceeds extent.
func (d Dimensions) Within(extent int) bool {
	return d.Width <= extent && d.Height <= extent
}

// MaxDimensions scales width and height so that the larger side equals
// MaxExtent, keeping the aspect ratio. Equal sides pin the height.
//
// No validation is performed. A scaled side that is not finite
// (zero or non-finite inputs) is reported as 0.
func MaxDimensions(width float64, height float64) Dimensions {
	return MaxDimensionsWithin(width, height, MaxExtent)
}

// MaxDimensionsWithin is MaxDimensions with a custom extent.
func MaxDimensionsWithin(width float64, height float64, extent int) Dimensions {
	if width > height {
		return Dimensions{
			Width:  extent,
			Height: scale(height, width, extent),
		}
	}

	return Dimensions{
		Width:  scale(width, height, extent),
		Height: extent,
	}
}

// Clamp is MaxDimensions that rejects inputs it cannot scale meaningfully.
func Clamp(width float64, height float64) (Dimensions, error) {
	return ClampWithin(width, height, MaxExtent)
}

// ClampWithin is Clamp with a custom extent.
// Negative, NaN and infinite sides are rejected, as is a zero larger side.
// A zero smaller side is allowed and stays zero.
func ClampWithin(width float64, height float64, extent int) (Dimensions, error) {
	if extent <= 0 {
		return Dimensions{}, fmt.Errorf("ClampWithin: non-positive extent, extent=%d, %w", extent, ErrInvalidDimensions)
	}
	for _, side := range []float64{width, height} {
		if math.IsNaN(side) || math.IsInf(side, 0) || side < 0 {
			return Dimensions{}, fmt.Errorf("ClampWithin: side must be finite and non-negative, width=%v, height=%v, %w", width, height, ErrInvalidDimensions)
		}
	}
	if width == 0 && height == 0 {
		return Dimensions{}, fmt.Errorf("ClampWithin: empty rectangle, %w", ErrInvalidDimensions)
	}

	return MaxDimensionsWithin(width, height, extent), nil
}

// ParseDimensions parses "WxH" (also "WXH" and "W,H").
func ParseDimensions(s string) (Dimensions, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == 'x' || r == 'X' || r == ','
	})
	if len(parts) != 2 {
		return Dimensions{}, fmt.Errorf("ParseDimensions: expected WxH, s=%q, %w", s, ErrInvalidDimensions)
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Dimensions{}, fmt.Errorf("ParseDimensions: unable to parse width, s=%q, %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Dimensions{}, fmt.Errorf("ParseDimensions: unable to parse height, s=%q, %w", s, err)
	}
	if width < 0 || height < 0 {
		return Dimensions{}, fmt.Errorf("ParseDimensions: negative side, s=%q, %w", s, ErrInvalidDimensions)
	}

	return Dimensions{Width: width, Height: height}, nil
}

// scale returns round(side * extent / larger), rounding half up.
func scale(side float64, larger float64, extent int) int {
	v := side * float64(extent) / larger
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	// v + 0.5 can round up in floating point; compare the fraction instead.
	r := math.Floor(v)
	if v-r >= 0.5 {
		r++
	}
	return int(r)
}
