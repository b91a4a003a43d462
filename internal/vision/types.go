// Package vision locates and crops the dialogue box and speaker-name label in
// gameplay frames.
package vision

import (
	"image"

	"dialogue-ocr/pkg/geometry"
)

// Side indicates which half of the frame the dialogue box sits in.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Region is a located contour together with its bounding rectangle and
// enclosed area. Used both for dialogue boxes and for name corner markers.
type Region struct {
	Rect    geometry.RectInt `json:"rect"`
	Contour []image.Point    `json:"contour"`
	Area    float64          `json:"area"`
}
