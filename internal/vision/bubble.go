package vision

import (
	"dialogue-ocr/pkg/geometry"

	"gocv.io/x/gocv"
)

// LocateBubbles finds dialogue box outlines in a binarized frame.
// Thresholds scale with the frame being examined, so any capture resolution
// with the same aspect layout works. Contours are returned in discovery order;
// callers only rely on the first.
func LocateBubbles(binary gocv.Mat, p Params) []Region {
	w, h := binary.Cols(), binary.Rows()

	xMin := int(float64(w) * p.BubbleXMinRatio)
	xMax := int(float64(w) * p.BubbleXMaxRatio)
	yMax := int(float64(h) * p.BubbleYMaxRatio)
	minArea := float64(int(float64(w*h) * p.BubbleMinAreaRatio))

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	var bubbles []Region
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		rect := geometry.FromImageRect(gocv.BoundingRect(contour))
		area := gocv.ContourArea(contour)

		if area <= minArea {
			continue
		}
		if rect.X < xMin || rect.X > xMax || rect.Y >= yMax {
			continue
		}

		bubbles = append(bubbles, Region{
			Rect:    rect,
			Contour: contour.ToPoints(),
			Area:    area,
		})
	}

	return bubbles
}

// ClassifySide reports which half of the frame the region's center falls in.
// A region centered exactly on the midline is on the right.
func ClassifySide(r Region, frameWidth int) Side {
	if r.Rect.CenterX() < float64(frameWidth)/2 {
		return SideLeft
	}
	return SideRight
}
