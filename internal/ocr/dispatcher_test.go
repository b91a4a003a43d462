package ocr

import (
	"errors"
	"testing"

	"dialogue-ocr/internal/vision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type call struct {
	layout Layout
	lang   string
	rows   int
	cols   int
}

type fakeRecognizer struct {
	results map[Layout]string
	err     error
	calls   []call
}

func (f *fakeRecognizer) Text(img gocv.Mat, layout Layout, lang string) (string, error) {
	f.calls = append(f.calls, call{layout: layout, lang: lang, rows: img.Rows(), cols: img.Cols()})
	if f.err != nil {
		return "", f.err
	}
	return f.results[layout], nil
}

type fakeReader struct {
	fragments []Fragment
	err       error
	calls     int
}

func (f *fakeReader) Fragments(img gocv.Mat) ([]Fragment, error) {
	f.calls++
	return f.fragments, f.err
}

func images(t *testing.T) (gocv.Mat, gocv.Mat) {
	t.Helper()
	dialogue := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 40, 60, gocv.MatTypeCV8U)
	name := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 10, 30, gocv.MatTypeCV8UC3)
	t.Cleanup(func() {
		dialogue.Close()
		name.Close()
	})
	return dialogue, name
}

func TestRecognizePrimaryOnly(t *testing.T) {
	dialogue, name := images(t)
	primary := &fakeRecognizer{results: map[Layout]string{
		LayoutBlock: "  첫 줄  \n\n  둘째 줄\n",
		LayoutLine:  "  세이버 \n",
	}}
	secondary := &fakeReader{}

	d := NewDispatcher(primary, secondary, vision.DefaultParams(), nil)
	speaker, text, err := d.Recognize(dialogue, name, "kor")
	require.NoError(t, err)

	assert.Equal(t, "세이버", speaker)
	assert.Equal(t, "첫 줄\n둘째 줄", text)
	assert.Zero(t, secondary.calls)

	require.Len(t, primary.calls, 2)
	assert.Equal(t, call{layout: LayoutBlock, lang: "kor", rows: 40, cols: 60}, primary.calls[0])
	// The name crop is binarized (and doubled) before recognition.
	assert.Equal(t, call{layout: LayoutLine, lang: "kor", rows: 20, cols: 60}, primary.calls[1])
}

func TestRecognizeFallsBackWhenEmpty(t *testing.T) {
	dialogue, name := images(t)
	primary := &fakeRecognizer{results: map[Layout]string{LayoutBlock: " \n \n", LayoutLine: "  "}}
	secondary := &fakeReader{fragments: []Fragment{{Text: "안녕"}, {Text: "하세요"}}}

	d := NewDispatcher(primary, secondary, vision.DefaultParams(), nil)
	speaker, text, err := d.Recognize(dialogue, name, "kor")
	require.NoError(t, err)

	assert.Equal(t, "안녕 하세요", text)
	assert.Equal(t, "안녕 하세요", speaker)
	assert.Equal(t, 2, secondary.calls)
	assert.Len(t, primary.calls, 2)
}

func TestRecognizeBothEmpty(t *testing.T) {
	dialogue, name := images(t)
	primary := &fakeRecognizer{}
	secondary := &fakeReader{}

	d := NewDispatcher(primary, secondary, vision.DefaultParams(), nil)
	speaker, text, err := d.Recognize(dialogue, name, "kor")
	require.NoError(t, err)
	assert.Empty(t, speaker)
	assert.Empty(t, text)
}

func TestRecognizePrimaryErrorFallsBack(t *testing.T) {
	dialogue, name := images(t)
	primary := &fakeRecognizer{err: errors.New("tesseract exploded")}
	secondary := &fakeReader{fragments: []Fragment{{Text: "대사"}}}

	d := NewDispatcher(primary, secondary, vision.DefaultParams(), nil)
	speaker, text, err := d.Recognize(dialogue, name, "kor")
	require.NoError(t, err)
	assert.Equal(t, "대사", text)
	assert.Equal(t, "대사", speaker)
}

func TestRecognizeSecondaryError(t *testing.T) {
	dialogue, name := images(t)
	boom := errors.New("reader failed")
	primary := &fakeRecognizer{}
	secondary := &fakeReader{err: boom}

	d := NewDispatcher(primary, secondary, vision.DefaultParams(), nil)
	_, _, err := d.Recognize(dialogue, name, "kor")
	assert.ErrorIs(t, err, boom)
}

func TestRecognizeEmptyImages(t *testing.T) {
	primary := &fakeRecognizer{}
	secondary := &fakeReader{}
	empty := gocv.NewMat()
	defer empty.Close()

	d := NewDispatcher(primary, secondary, vision.DefaultParams(), nil)
	speaker, text, err := d.Recognize(empty, empty, "kor")
	require.NoError(t, err)
	assert.Empty(t, speaker)
	assert.Empty(t, text)
	assert.Empty(t, primary.calls)
	assert.Zero(t, secondary.calls)
}
