package vision

import (
	"image"

	"dialogue-ocr/pkg/colorutil"

	"gocv.io/x/gocv"
)

// BuildMask returns a single-channel rows x cols mask with the interiors of
// every region's contour filled with 255.
func BuildMask(regions []Region, rows, cols int) gocv.Mat {
	mask := gocv.Zeros(rows, cols, gocv.MatTypeCV8U)
	if len(regions) == 0 {
		return mask
	}

	pts := make([][]image.Point, 0, len(regions))
	for _, r := range regions {
		if len(r.Contour) > 0 {
			pts = append(pts, r.Contour)
		}
	}
	if len(pts) == 0 {
		return mask
	}

	contours := gocv.NewPointsVectorFromPoints(pts)
	defer contours.Close()
	gocv.DrawContours(&mask, contours, -1, colorutil.White, -1)

	return mask
}

// ApplyMask zeroes every pixel of frame outside mask.
func ApplyMask(frame, mask gocv.Mat) gocv.Mat {
	masked := gocv.NewMat()
	gocv.BitwiseAndWithMask(frame, frame, &masked, mask)
	return masked
}

// CropBubble cuts the region out of the raw frame. The region is in binarized
// coordinates, so each component is divided by the upscale factor first.
func CropBubble(raw gocv.Mat, r Region, p Params) gocv.Mat {
	rect := r.Rect.Div(p.UpscaleFactor).Clamp(raw.Cols(), raw.Rows())
	if rect.Empty() {
		return gocv.NewMat()
	}
	view := raw.Region(rect.ImageRect())
	defer view.Close()
	return view.Clone()
}
