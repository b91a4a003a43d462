package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"

	"dialogue-ocr/internal/ocr"
	"dialogue-ocr/internal/scan"
	"dialogue-ocr/pkg/colorutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type sliceSource struct {
	frames []gocv.Mat
	next   int
	closed bool
}

func (s *sliceSource) FrameCount() int { return len(s.frames) }

func (s *sliceSource) Read(dst *gocv.Mat) bool {
	if s.next >= len(s.frames) {
		return false
	}
	s.frames[s.next].CopyTo(dst)
	s.next++
	return true
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func newSource(t *testing.T, frames ...gocv.Mat) *sliceSource {
	t.Helper()
	src := &sliceSource{frames: frames}
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return src
}

func rawBlank() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 180, 320, gocv.MatTypeCV8UC3)
}

// rawDialogue draws a striped 90x80 dialogue box at (100, 10).
func rawDialogue(oddDark bool) gocv.Mat {
	m := rawBlank()
	box := image.Rect(100, 10, 189, 89)
	gocv.Rectangle(&m, box, colorutil.White, -1)
	for c := 0; c < 9; c++ {
		if (c%2 == 1) != oddDark {
			continue
		}
		x0 := box.Min.X + c*10
		col := image.Rect(max(x0, box.Min.X+3), box.Min.Y+3, min(x0+9, box.Max.X-3), box.Max.Y-3)
		gocv.Rectangle(&m, col, colorutil.Black, -1)
	}
	return m
}

// pixelRecognizer names a block image after its lit pixel count, so distinct
// dialogue boxes read as distinct lines.
type pixelRecognizer struct {
	fixed  string
	closed bool
}

func (r *pixelRecognizer) Text(img gocv.Mat, layout ocr.Layout, lang string) (string, error) {
	if layout == ocr.LayoutLine {
		return "speaker", nil
	}
	if r.fixed != "" {
		return r.fixed, nil
	}
	return fmt.Sprintf("line %d", gocv.CountNonZero(img)), nil
}

func (r *pixelRecognizer) Close() error {
	r.closed = true
	return nil
}

type stubReader struct {
	err    error
	closed bool
}

func (r *stubReader) Fragments(img gocv.Mat) ([]ocr.Fragment, error) {
	return nil, r.err
}

func (r *stubReader) Close() error {
	r.closed = true
	return nil
}

type memoryStore struct {
	mu      sync.Mutex
	indices []int
	err     error
}

func (s *memoryStore) Save(index int, crop gocv.Mat) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices = append(s.indices, index)
	return CropFilename(index), nil
}

type harness struct {
	src       *sliceSource
	store     *memoryStore
	primaries []*pixelRecognizer
	secondary *stubReader
	fixed     string
	secErr    error
}

func (h *harness) driver(workers int) *Driver {
	h.store = &memoryStore{}
	return NewDriver(h.store,
		WithWorkers(workers),
		WithSourceOpener(func(string) (scan.FrameSource, error) { return h.src, nil }),
		WithRecognizers(
			func(string) (ocr.Recognizer, error) {
				r := &pixelRecognizer{fixed: h.fixed}
				h.primaries = append(h.primaries, r)
				return r, nil
			},
			func(string) (ocr.FragmentReader, error) {
				h.secondary = &stubReader{err: h.secErr}
				return h.secondary, nil
			},
		),
	)
}

func TestRunTwoPhases(t *testing.T) {
	h := &harness{src: newSource(t, rawBlank(), rawDialogue(true), rawDialogue(false), rawDialogue(true))}

	var progress []Progress
	results, err := h.driver(1).Run(context.Background(), "video.mp4", "kor", func(p Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].Text, results[1].Text)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, "speaker", r.Speaker)
		assert.Equal(t, CropFilename(i), r.CropID)
	}

	require.Len(t, progress, 6)
	for i := 0; i < 4; i++ {
		assert.Equal(t, Progress{Phase: PhaseScan, Current: i + 1, Total: 4}, progress[i])
	}
	for i, p := range progress[4:] {
		assert.Equal(t, PhaseOCR, p.Phase)
		assert.Equal(t, i+1, p.Current)
		assert.Equal(t, 2, p.Total)
		require.NotNil(t, p.Dialogue)
		assert.Equal(t, results[i], *p.Dialogue)
	}

	assert.True(t, h.src.closed)
	require.Len(t, h.primaries, 1)
	assert.True(t, h.primaries[0].closed)
	assert.True(t, h.secondary.closed)
	assert.ElementsMatch(t, []int{0, 1}, h.store.indices)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	frames := func() []gocv.Mat {
		return []gocv.Mat{rawBlank(), rawDialogue(true), rawDialogue(false), rawDialogue(true), rawDialogue(false)}
	}

	seq := &harness{src: newSource(t, frames()...)}
	want, err := seq.driver(1).Run(context.Background(), "v.mp4", "kor", nil)
	require.NoError(t, err)

	par := &harness{src: newSource(t, frames()...)}
	var currents []int
	got, err := par.driver(3).Run(context.Background(), "v.mp4", "kor", func(p Progress) {
		if p.Phase == PhaseOCR {
			currents = append(currents, p.Current)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, []int{1, 2, 3}, currents)
	assert.Len(t, par.primaries, 3)
	for _, p := range par.primaries {
		assert.True(t, p.closed)
	}
}

func TestRunMergesContinuedLines(t *testing.T) {
	h := &harness{
		src:   newSource(t, rawBlank(), rawDialogue(true), rawDialogue(false), rawDialogue(true)),
		fixed: "안녕하세요",
	}

	var ocrEvents int
	results, err := h.driver(1).Run(context.Background(), "v.mp4", "kor", func(p Progress) {
		if p.Phase == PhaseOCR {
			ocrEvents++
		}
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "안녕하세요", results[0].Text)
	assert.Equal(t, CropFilename(1), results[0].CropID)
	assert.Equal(t, 2, ocrEvents)
}

func TestRunNoDialogue(t *testing.T) {
	h := &harness{src: newSource(t, rawBlank(), rawBlank())}

	results, err := h.driver(2).Run(context.Background(), "v.mp4", "kor", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, h.primaries)
	assert.Nil(t, h.secondary)
}

func TestRunUnopenable(t *testing.T) {
	d := NewDriver(&memoryStore{}, WithSourceOpener(func(path string) (scan.FrameSource, error) {
		return nil, fmt.Errorf("%w: %s", scan.ErrUnopenableSource, path)
	}))

	_, err := d.Run(context.Background(), "missing.mp4", "kor", nil)
	assert.ErrorIs(t, err, scan.ErrUnopenableSource)
}

func TestRunCancelled(t *testing.T) {
	h := &harness{src: newSource(t, rawBlank(), rawDialogue(true), rawDialogue(false))}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.driver(1).Run(ctx, "v.mp4", "kor", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, h.src.closed)
}

func TestRunRecognizerError(t *testing.T) {
	boom := errors.New("reader failed")
	h := &harness{
		src:    newSource(t, rawBlank(), rawDialogue(true), rawDialogue(false)),
		fixed:  " ",
		secErr: boom,
	}

	_, err := h.driver(1).Run(context.Background(), "v.mp4", "kor", nil)
	assert.ErrorIs(t, err, boom)
}

func TestRunCropStoreError(t *testing.T) {
	h := &harness{src: newSource(t, rawBlank(), rawDialogue(true), rawDialogue(false))}
	d := h.driver(1)
	h.store.err = errors.New("disk full")

	_, err := d.Run(context.Background(), "v.mp4", "kor", nil)
	assert.ErrorContains(t, err, "disk full")
}
