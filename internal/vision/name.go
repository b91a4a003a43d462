package vision

import (
	"image"
	"sort"

	"dialogue-ocr/pkg/geometry"

	"gocv.io/x/gocv"
)

// ExtractNameRegion crops the speaker-name label from a raw frame.
//
// The coarse crop comes from the calibrated ratio for side. Inside it, only
// pixels in the marker color band are kept; small triangles of that color
// frame the name text and, when found, narrow the crop horizontally to the
// span between them. Without usable markers the whole masked crop is returned.
func ExtractNameRegion(raw gocv.Mat, side Side, p Params) gocv.Mat {
	roiRect := p.NameRatio(side).Apply(raw.Cols(), raw.Rows()).Clamp(raw.Cols(), raw.Rows())
	if roiRect.Empty() {
		return gocv.NewMat()
	}

	roi := raw.Region(roiRect.ImageRect())
	defer roi.Close()

	lower, upper := p.MarkerBand.Scalars()
	colorMask := gocv.NewMat()
	defer colorMask.Close()
	gocv.InRangeWithScalar(roi, lower, upper, &colorMask)

	masked := gocv.NewMat()
	gocv.BitwiseAndWithMask(roi, roi, &masked, colorMask)

	markers := findMarkers(colorMask, p)
	start, end := nameSpan(markers, side, roiRect.Width)
	if start >= end {
		return masked
	}

	view := masked.Region(image.Rect(start, 0, end, masked.Rows()))
	defer view.Close()
	cropped := view.Clone()
	masked.Close()
	return cropped
}

// findMarkers returns the small triangular blobs in a marker color mask,
// ordered left to right.
func findMarkers(mask gocv.Mat, p Params) []Region {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	maxArea := float64(mask.Rows()*mask.Cols()) * p.MarkerMaxAreaRatio

	var markers []Region
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area > maxArea {
			continue
		}

		epsilon := p.MarkerApproxRatio * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		vertices := approx.Size()
		approx.Close()
		if vertices != 3 {
			continue
		}

		markers = append(markers, Region{
			Rect:    geometry.FromImageRect(gocv.BoundingRect(contour)),
			Contour: contour.ToPoints(),
			Area:    area,
		})
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Rect.X < markers[j].Rect.X
	})
	return markers
}

// nameSpan computes the [start, end) column range of the name text inside a
// coarse crop of width roiWidth. start >= end means no usable span.
//
// Left labels start right after the first marker and end at the furthest
// marker origin. Right labels start after the nearest marker's right edge and
// end one marker width before the crop edge.
func nameSpan(markers []Region, side Side, roiWidth int) (start, end int) {
	start, end = roiWidth, 0
	for i, m := range markers {
		r := m.Rect
		switch side {
		case SideLeft:
			if i == 0 {
				start = r.X + r.Width
			}
			end = max(end, r.X)
		case SideRight:
			start = min(start, r.X+r.Width)
			end = roiWidth - r.Width
		}
	}
	return start, end
}
