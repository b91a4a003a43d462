package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func gradientFrame(rows, cols int) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := uint8((x * 255) / max(1, cols-1))
			m.SetUCharAt(y, x*3+0, v)
			m.SetUCharAt(y, x*3+1, v)
			m.SetUCharAt(y, x*3+2, v)
		}
	}
	return m
}

func solidFrame(rows, cols int, v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestBinarizeDoublesSizeAndIsBinary(t *testing.T) {
	src := gradientFrame(30, 40)
	defer src.Close()

	out := Binarize(src, DefaultParams())
	defer out.Close()

	require.Equal(t, 60, out.Rows())
	require.Equal(t, 80, out.Cols())
	require.Equal(t, 1, out.Channels())

	for y := 0; y < out.Rows(); y++ {
		for x := 0; x < out.Cols(); x++ {
			v := out.GetUCharAt(y, x)
			if v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}

func TestBinarizeThreshold(t *testing.T) {
	p := DefaultParams()

	white := solidFrame(10, 10, 255)
	defer white.Close()
	bw := Binarize(white, p)
	defer bw.Close()
	assert.Equal(t, 400, gocv.CountNonZero(bw))

	// 200 is below the 210 threshold.
	dim := solidFrame(10, 10, 200)
	defer dim.Close()
	bd := Binarize(dim, p)
	defer bd.Close()
	assert.Equal(t, 0, gocv.CountNonZero(bd))
}

func TestBinarizeAcceptsGray(t *testing.T) {
	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 8, 12, gocv.MatTypeCV8U)
	defer gray.Close()

	out := Binarize(gray, DefaultParams())
	defer out.Close()

	assert.Equal(t, 16, out.Rows())
	assert.Equal(t, 24, out.Cols())
	assert.Equal(t, 16*24, gocv.CountNonZero(out))
}
