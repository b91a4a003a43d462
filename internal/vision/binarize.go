package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Binarize converts a raw frame into a black/white image twice the size of the
// input: grayscale, cubic upscale, 5x5 Gaussian blur, fixed global threshold.
// The caller owns the returned Mat.
func Binarize(src gocv.Mat, p Params) gocv.Mat {
	gray := toGray(src)
	defer gray.Close()

	factor := float64(p.UpscaleFactor)
	upscaled := gocv.NewMat()
	defer upscaled.Close()
	gocv.Resize(gray, &upscaled, image.Point{}, factor, factor, gocv.InterpolationCubic)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := p.BlurKernel
	gocv.GaussianBlur(upscaled, &blurred, image.Point{k, k}, 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	gocv.Threshold(blurred, &binary, p.BinaryThreshold, 255, gocv.ThresholdBinary)
	return binary
}

// toGray returns a single-channel copy of src.
func toGray(src gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	}
	return gray
}
