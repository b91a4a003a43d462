package ocr

import (
	"fmt"
	"strings"
	"sync"

	"dialogue-ocr/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Fragment is one piece of text found by the secondary recognizer.
type Fragment struct {
	Bounds     geometry.RectInt `json:"bounds"`
	Text       string           `json:"text"`
	Confidence float64          `json:"confidence"`
}

// FragmentReader finds scattered text fragments in an image.
type FragmentReader interface {
	Fragments(img gocv.Mat) ([]Fragment, error)
}

// WordReader is the secondary recognizer: it runs sparse-text detection and
// returns word boxes. Building one loads language data, so create it once per
// job. A WordReader serializes its own calls and may be shared.
type WordReader struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewWordReader creates a word-level reader for lang.
func NewWordReader(lang string) (*WordReader, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(splitLanguages(lang)...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}

	return &WordReader{client: client}, nil
}

// Close releases OCR resources.
func (r *WordReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Fragments finds all words in img, in Tesseract's reading order. Bounds are in
// img coordinates.
func (r *WordReader) Fragments(img gocv.Mat) ([]Fragment, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	scaled, scale := upscaleSmall(img, minTextHeight)
	defer scaled.Close()

	data, err := encodePNG(scaled)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get boxes: %w", err)
	}

	var fragments []Fragment
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		fragments = append(fragments, Fragment{
			Bounds: geometry.RectInt{
				X:      int(float64(box.Box.Min.X) / scale),
				Y:      int(float64(box.Box.Min.Y) / scale),
				Width:  int(float64(box.Box.Dx()) / scale),
				Height: int(float64(box.Box.Dy()) / scale),
			},
			Text:       text,
			Confidence: box.Confidence,
		})
	}

	return fragments, nil
}
