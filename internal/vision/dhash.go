package vision

import (
	"image"
	"math/bits"

	"dialogue-ocr/pkg/geometry"

	"gocv.io/x/gocv"
)

// Fingerprint is a 64-bit difference hash of a grayscale region.
type Fingerprint uint64

// DHash computes the difference hash of a single-channel image. The image is
// area-resized to (hashSize+1) x hashSize; each bit records whether the right
// neighbour of a pixel is strictly brighter, row-major, most significant bit
// first. hashSize 8 yields 64 bits.
func DHash(gray gocv.Mat, hashSize int) Fingerprint {
	if gray.Empty() {
		return 0
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(hashSize+1, hashSize), 0, 0, gocv.InterpolationArea)

	var h Fingerprint
	for y := 0; y < hashSize; y++ {
		for x := 0; x < hashSize; x++ {
			h <<= 1
			if resized.GetUCharAt(y, x+1) > resized.GetUCharAt(y, x) {
				h |= 1
			}
		}
	}
	return h
}

// RegionHash fingerprints the part of img covered by rect, clamped to the image.
func RegionHash(img gocv.Mat, rect geometry.RectInt, hashSize int) Fingerprint {
	r := rect.Clamp(img.Cols(), img.Rows())
	if r.Empty() {
		return 0
	}
	view := img.Region(r.ImageRect())
	defer view.Close()
	return DHash(view, hashSize)
}

// Hamming returns the number of differing bits between two fingerprints.
func Hamming(a, b Fingerprint) int {
	return bits.OnesCount64(uint64(a ^ b))
}
