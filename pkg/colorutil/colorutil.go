// Package colorutil provides shared color utilities for dialogue extraction.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Common colors used when drawing masks and test fixtures.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// Marker is the fill color of the triangular corner markers painted
	// around speaker names.
	Marker = color.RGBA{R: 255, G: 200, B: 0, A: 255}
)

// Band is an inclusive color range in OpenCV channel order (B, G, R).
type Band struct {
	Lower [3]uint8 `json:"lower"`
	Upper [3]uint8 `json:"upper"`
}

// BandAround returns a band centered on c with the given per-channel tolerance.
func BandAround(c color.RGBA, tolerance uint8) Band {
	center := [3]uint8{c.B, c.G, c.R}
	var b Band
	for i, v := range center {
		b.Lower[i] = uint8(max(0, int(v)-int(tolerance)))
		b.Upper[i] = uint8(min(255, int(v)+int(tolerance)))
	}
	return b
}

// ParseHex parses an "rrggbb" or "#rrggbb" color.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("color must be rrggbb: %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color must be rrggbb: %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Scalars returns the band bounds as gocv scalars for InRangeWithScalar.
func (b Band) Scalars() (lower, upper gocv.Scalar) {
	lower = gocv.NewScalar(float64(b.Lower[0]), float64(b.Lower[1]), float64(b.Lower[2]), 0)
	upper = gocv.NewScalar(float64(b.Upper[0]), float64(b.Upper[1]), float64(b.Upper[2]), 0)
	return lower, upper
}
