package ocr

import (
	"fmt"
	"strings"

	"dialogue-ocr/internal/metrics"
	"dialogue-ocr/internal/vision"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Dispatcher recognizes the dialogue body and speaker name of one event,
// falling back to the secondary reader when the primary returns nothing.
type Dispatcher struct {
	primary   Recognizer
	secondary FragmentReader
	params    vision.Params
	log       *zap.Logger
}

// NewDispatcher creates a dispatcher. The primary recognizer must not be shared
// with another goroutine; the secondary may be. A nil logger disables logging.
func NewDispatcher(primary Recognizer, secondary FragmentReader, params vision.Params, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		primary:   primary,
		secondary: secondary,
		params:    params,
		log:       log,
	}
}

// Recognize returns the speaker and dialogue text. dialogue is the masked,
// binarized frame; name is the raw speaker-name crop. Empty strings are valid
// results. Each recognizer runs at most once per field.
func (d *Dispatcher) Recognize(dialogue, name gocv.Mat, lang string) (speaker, text string, err error) {
	text, err = d.recognizeBody(dialogue, lang)
	if err != nil {
		return "", "", fmt.Errorf("dialogue text: %w", err)
	}

	speaker, err = d.recognizeSpeaker(name, lang)
	if err != nil {
		return "", "", fmt.Errorf("speaker name: %w", err)
	}

	return speaker, text, nil
}

func (d *Dispatcher) recognizeBody(img gocv.Mat, lang string) (string, error) {
	if img.Empty() {
		return "", nil
	}

	text := CleanText(d.primaryText(img, LayoutBlock, lang))
	if text != "" {
		return text, nil
	}
	return d.fallback(img, "text")
}

func (d *Dispatcher) recognizeSpeaker(img gocv.Mat, lang string) (string, error) {
	if img.Empty() {
		return "", nil
	}

	binary := vision.Binarize(img, d.params)
	defer binary.Close()

	name := strings.TrimSpace(d.primaryText(binary, LayoutLine, lang))
	if name != "" {
		return name, nil
	}
	return d.fallback(binary, "speaker")
}

// primaryText runs the primary recognizer. Failures are logged and read as
// "nothing recognized" so the fallback gets its turn.
func (d *Dispatcher) primaryText(img gocv.Mat, layout Layout, lang string) string {
	text, err := d.primary.Text(img, layout, lang)
	if err != nil {
		d.log.Warn("primary recognizer failed", zap.Stringer("layout", layout), zap.Error(err))
		return ""
	}
	return text
}

func (d *Dispatcher) fallback(img gocv.Mat, field string) (string, error) {
	if d.secondary == nil {
		return "", nil
	}

	metrics.RecognitionFallbacksTotal.WithLabelValues(field).Inc()
	d.log.Debug("falling back to secondary recognizer", zap.String("field", field))

	fragments, err := d.secondary.Fragments(img)
	if err != nil {
		return "", err
	}
	return JoinFragments(fragments), nil
}
