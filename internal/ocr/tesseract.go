// Package ocr provides text recognition for dialogue and speaker-name crops.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "kor"

// Layout is the page layout hint passed to the primary recognizer.
type Layout int

const (
	// LayoutBlock assumes a single uniform block of text (dialogue body).
	LayoutBlock Layout = iota
	// LayoutLine assumes a single text line (speaker name).
	LayoutLine
)

func (l Layout) String() string {
	if l == LayoutLine {
		return "line"
	}
	return "block"
}

func (l Layout) pageSegMode() gosseract.PageSegMode {
	if l == LayoutLine {
		return gosseract.PSM_SINGLE_LINE
	}
	return gosseract.PSM_SINGLE_BLOCK
}

// Recognizer returns the text in an image. An empty string is a valid result.
type Recognizer interface {
	Text(img gocv.Mat, layout Layout, lang string) (string, error)
}

// Engine is the primary recognizer, backed by a Tesseract client.
// An Engine is not safe for concurrent use.
type Engine struct {
	client *gosseract.Client
	lang   string
}

// NewEngine creates a Tesseract engine for lang ("kor", "eng", "kor+eng", ...).
func NewEngine(lang string) (*Engine, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(splitLanguages(lang)...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Keep runs of spaces between words; dialogue spacing is meaningful.
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR variable: %w", err)
	}

	return &Engine{client: client, lang: lang}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Text recognizes img with the given layout. lang switches the engine's
// language when it differs from the current one.
func (e *Engine) Text(img gocv.Mat, layout Layout, lang string) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	if lang != "" && lang != e.lang {
		if err := e.client.SetLanguage(splitLanguages(lang)...); err != nil {
			return "", fmt.Errorf("failed to set OCR language: %w", err)
		}
		e.lang = lang
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	if err := e.client.SetPageSegMode(layout.pageSegMode()); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}

	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// splitLanguages turns "kor+eng" into {"kor", "eng"}.
func splitLanguages(lang string) []string {
	var langs []string
	for _, l := range strings.Split(lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{DefaultLanguage}
	}
	return langs
}
