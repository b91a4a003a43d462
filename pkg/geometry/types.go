// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
)

// Size represents a 2D size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height int) Size {
	return Size{Width: width, Height: height}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromImageRect converts an image.Rectangle (as returned by gocv.BoundingRect).
func FromImageRect(r image.Rectangle) RectInt {
	return RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// ImageRect converts to an image.Rectangle suitable for Mat.Region.
func (r RectInt) ImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// CenterX returns the horizontal center of the rectangle.
func (r RectInt) CenterX() float64 {
	return float64(r.X) + float64(r.Width)/2
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Div maps the rectangle down by an integer factor, flooring every component
// independently (x/f, y/f, w/f, h/f).
func (r RectInt) Div(factor int) RectInt {
	if factor <= 1 {
		return r
	}
	return RectInt{X: r.X / factor, Y: r.Y / factor, Width: r.Width / factor, Height: r.Height / factor}
}

// Clamp restricts the rectangle to [0,w) x [0,h).
func (r RectInt) Clamp(w, h int) RectInt {
	x0 := max(0, r.X)
	y0 := max(0, r.Y)
	x1 := min(w, r.X+r.Width)
	y1 := min(h, r.Y+r.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return RectInt{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Ratio is a rectangle expressed as fractions of a reference frame's width and
// height. X1/Y1 is the top-left corner, X2/Y2 the bottom-right corner.
type Ratio struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// RatioFromPixels builds a Ratio from pixel corners measured on a reference
// resolution.
func RatioFromPixels(x1, y1, x2, y2 int, ref Size) Ratio {
	w, h := float64(ref.Width), float64(ref.Height)
	return Ratio{
		X1: float64(x1) / w,
		Y1: float64(y1) / h,
		X2: float64(x2) / w,
		Y2: float64(y2) / h,
	}
}

// Apply resolves the ratio against a concrete frame size. Corners are
// truncated toward zero.
func (r Ratio) Apply(w, h int) RectInt {
	x1 := int(float64(w) * r.X1)
	y1 := int(float64(h) * r.Y1)
	x2 := int(float64(w) * r.X2)
	y2 := int(float64(h) * r.Y2)
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
