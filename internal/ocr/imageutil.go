package ocr

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"
)

// minTextHeight is the smallest image side handed to the word reader; smaller
// crops are upscaled first.
const minTextHeight = 150

// encodePNG encodes img for Tesseract.
func encodePNG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases C memory; copy before the buffer is released.
	src := buf.GetBytes()
	data := make([]byte, len(src))
	copy(data, src)
	return data, nil
}

// upscaleSmall returns img scaled so its smaller side is at least minDim, and
// the scale applied. The caller owns the returned Mat.
func upscaleSmall(img gocv.Mat, minDim int) (gocv.Mat, float64) {
	d := min(img.Rows(), img.Cols())
	if d <= 0 || d >= minDim {
		return img.Clone(), 1
	}

	scale := float64(minDim) / float64(d)
	scaled := gocv.NewMat()
	gocv.Resize(img, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	return scaled, scale
}

// CleanText trims every line of raw recognizer output, drops blank lines and
// joins the rest with newlines.
func CleanText(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// JoinFragments joins fragment texts with single spaces.
func JoinFragments(fragments []Fragment) string {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return strings.Join(texts, " ")
}
