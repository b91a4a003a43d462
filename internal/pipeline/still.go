package pipeline

import (
	"fmt"
	"image"

	"dialogue-ocr/internal/ocr"
	"dialogue-ocr/internal/vision"
	"dialogue-ocr/pkg/geometry"

	"gocv.io/x/gocv"
)

// PrepareStill readies a single screenshot for recognition: optional roi crop,
// binarization, dialogue box masking and a 2x2 opening to clean up strokes.
// An empty roi uses the whole image. The caller owns the returned Mat.
func PrepareStill(img gocv.Mat, roi geometry.RectInt, p vision.Params) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	src := img
	if !roi.Empty() {
		r := roi.Clamp(img.Cols(), img.Rows())
		if r.Empty() {
			return gocv.NewMat(), fmt.Errorf("roi %v outside %dx%d image", roi, img.Cols(), img.Rows())
		}
		src = img.Region(r.ImageRect())
		defer src.Close()
	}

	binary := vision.Binarize(src, p)
	defer binary.Close()

	mask := vision.BuildMask(vision.LocateBubbles(binary, p), binary.Rows(), binary.Cols())
	defer mask.Close()

	masked := vision.ApplyMask(binary, mask)
	defer masked.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer kernel.Close()

	opened := gocv.NewMat()
	gocv.MorphologyEx(masked, &opened, gocv.MorphOpen, kernel)
	return opened, nil
}

// RecognizeStill returns the cleaned dialogue text of a single screenshot.
func RecognizeStill(img gocv.Mat, roi geometry.RectInt, rec ocr.Recognizer, lang string, p vision.Params) (string, error) {
	prepared, err := PrepareStill(img, roi, p)
	if err != nil {
		return "", err
	}
	defer prepared.Close()

	text, err := rec.Text(prepared, ocr.LayoutBlock, lang)
	if err != nil {
		return "", err
	}
	return ocr.CleanText(text), nil
}
