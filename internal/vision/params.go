package vision

import (
	"dialogue-ocr/pkg/colorutil"
	"dialogue-ocr/pkg/geometry"
)

// ReferenceSize is the capture resolution the layout ratios were measured on.
var ReferenceSize = geometry.NewSize(2560, 1440)

// Params holds the calibration constants for dialogue extraction.
// The binarization constants are fixed: crop coordinates computed on the
// binarized frame are mapped back to the raw frame by UpscaleFactor.
type Params struct {
	// Binarization
	UpscaleFactor   int
	BlurKernel      int
	BinaryThreshold float32

	// Dialogue box placement, as fractions of the binarized frame
	BubbleXMinRatio    float64
	BubbleXMaxRatio    float64
	BubbleYMaxRatio    float64
	BubbleMinAreaRatio float64

	// Coarse speaker-name crops, as fractions of the raw frame
	NameLeft  geometry.Ratio
	NameRight geometry.Ratio

	// Corner marker filtering
	MarkerBand         colorutil.Band
	MarkerMaxAreaRatio float64 // of the coarse ROI area
	MarkerApproxRatio  float64 // polygon tolerance, of contour perimeter

	// Change detection
	HashSize            int
	HammingThreshold    int
	EmitOnFirstSighting bool
}

// DefaultParams returns the parameters calibrated against ReferenceSize captures.
func DefaultParams() Params {
	return Params{
		UpscaleFactor:   2,
		BlurKernel:      5,
		BinaryThreshold: 210,

		BubbleXMinRatio:    0.2695, // 690 / 2560
		BubbleXMaxRatio:    0.3711, // 950 / 2560
		BubbleYMaxRatio:    0.3472, // 500 / 1440
		BubbleMinAreaRatio: 0.0244, // 90000 / (2560*1440)

		NameLeft:  geometry.RatioFromPixels(280, 1257, 550, 1346, ReferenceSize),
		NameRight: geometry.RatioFromPixels(2049, 1258, 2277, 1345, ReferenceSize),

		MarkerBand:         colorutil.BandAround(colorutil.Marker, 50),
		MarkerMaxAreaRatio: 0.05,
		MarkerApproxRatio:  0.04,

		HashSize:         8,
		HammingThreshold: 6,
	}
}

// WithHammingThreshold returns a copy of params with a different change threshold.
func (p Params) WithHammingThreshold(bits int) Params {
	p.HammingThreshold = bits
	return p
}

// WithMarkerBand returns a copy of params with a custom marker color band.
// Useful when the game skin paints name markers in another color.
func (p Params) WithMarkerBand(b colorutil.Band) Params {
	p.MarkerBand = b
	return p
}

// WithFirstSighting returns a copy of params that also emits a change when a
// dialogue box appears after a frame without one.
func (p Params) WithFirstSighting(enabled bool) Params {
	p.EmitOnFirstSighting = enabled
	return p
}

// NameRatio returns the coarse name crop for a side.
func (p Params) NameRatio(side Side) geometry.Ratio {
	if side == SideRight {
		return p.NameRight
	}
	return p.NameLeft
}
