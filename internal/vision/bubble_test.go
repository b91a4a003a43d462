package vision

import (
	"image"
	"testing"

	"dialogue-ocr/pkg/colorutil"
	"dialogue-ocr/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestLocateBubblesSolidFrames(t *testing.T) {
	p := DefaultParams()

	for _, v := range []float64{0, 128, 255} {
		raw := solidFrame(180, 320, v)
		binary := Binarize(raw, p)

		assert.Empty(t, LocateBubbles(binary, p), "solid frame %v", v)

		binary.Close()
		raw.Close()
	}
}

func TestLocateBubblesFindsDialogueBox(t *testing.T) {
	p := DefaultParams()

	raw := solidFrame(180, 320, 0)
	defer raw.Close()
	gocv.Rectangle(&raw, image.Rect(100, 10, 190, 74), colorutil.White, -1)

	binary := Binarize(raw, p)
	defer binary.Close()

	bubbles := LocateBubbles(binary, p)
	require.Len(t, bubbles, 1)

	b := bubbles[0]
	assert.InDelta(t, 200, b.Rect.X, 3)
	assert.InDelta(t, 20, b.Rect.Y, 3)
	assert.InDelta(t, 180, b.Rect.Width, 6)
	assert.Greater(t, b.Area, 15000.0)
	assert.NotEmpty(t, b.Contour)
	assert.Equal(t, SideLeft, ClassifySide(b, binary.Cols()))
}

func TestLocateBubblesRejectsOutOfPlace(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"too far left", image.Rect(10, 10, 100, 74)},
		{"too low", image.Rect(100, 100, 190, 170)},
		{"too small", image.Rect(100, 10, 120, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := solidFrame(180, 320, 0)
			defer raw.Close()
			gocv.Rectangle(&raw, tt.rect, colorutil.White, -1)

			binary := Binarize(raw, p)
			defer binary.Close()

			assert.Empty(t, LocateBubbles(binary, p))
		})
	}
}

func TestClassifySide(t *testing.T) {
	tests := []struct {
		name string
		rect geometry.RectInt
		want Side
	}{
		{"centered on midline", geometry.RectInt{X: 300, Y: 0, Width: 40, Height: 10}, SideRight},
		{"left half", geometry.RectInt{X: 0, Y: 0, Width: 100, Height: 10}, SideLeft},
		{"just left of midline", geometry.RectInt{X: 299, Y: 0, Width: 41, Height: 10}, SideLeft},
		{"right half", geometry.RectInt{X: 400, Y: 0, Width: 100, Height: 10}, SideRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySide(Region{Rect: tt.rect}, 640))
		})
	}
}
