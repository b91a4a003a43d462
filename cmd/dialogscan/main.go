// Command dialogscan extracts dialogue from a gameplay recording, or the
// dialogue text of a single screenshot, and prints the result as JSON.
//
// Usage: dialogscan -video clip.mp4 [-out crops] [-workers 2]
//
//	dialogscan -image shot.png [-roi x,y,w,h]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"dialogue-ocr/internal/dialogue"
	stillimage "dialogue-ocr/internal/image"
	"dialogue-ocr/internal/logger"
	"dialogue-ocr/internal/ocr"
	"dialogue-ocr/internal/pipeline"
	"dialogue-ocr/internal/version"
	"dialogue-ocr/internal/vision"
	"dialogue-ocr/pkg/colorutil"
	"dialogue-ocr/pkg/geometry"

	"go.uber.org/zap"
)

var videoExts = []string{".mp4", ".avi", ".mov", ".mkv"}

type output struct {
	OK        bool              `json:"ok"`
	Text      string            `json:"text,omitempty"`
	Dialogues []dialogue.Result `json:"dialogues,omitempty"`
	CropDir   string            `json:"crop_dir,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func main() {
	videoPath := flag.String("video", "", "Path to a gameplay recording")
	imagePath := flag.String("image", "", "Path to a single screenshot (PNG, JPEG, TIFF, BMP, WebP)")
	roiFlag := flag.String("roi", "", "Screenshot region to read, as x,y,w,h")
	lang := flag.String("lang", ocr.DefaultLanguage, "Tesseract language (kor, eng, kor+eng)")
	outDir := flag.String("out", "", "Directory for dialogue box crops (default: a temp dir)")
	workers := flag.Int("workers", 1, "Parallel recognition workers")
	threshold := flag.Int("threshold", vision.DefaultParams().HammingThreshold, "Fingerprint bits that must differ to count as a new line")
	firstSighting := flag.Bool("first-sighting", false, "Also emit a line when a dialogue box first appears")
	markerColor := flag.String("marker-color", "", "Speaker-name marker color as rrggbb (default: built-in calibration)")
	markerTolerance := flag.Int("marker-tolerance", 50, "Per-channel tolerance around -marker-color")
	verbose := flag.Bool("v", false, "Verbose logging to stderr")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("dialogscan", version.String())
		return
	}

	if (*videoPath == "") == (*imagePath == "") {
		fmt.Fprintln(os.Stderr, "Usage: dialogscan -video <file> | -image <file> [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	log := logger.NewDevelopment(*verbose)
	defer log.Sync()

	params, err := markerParams(vision.DefaultParams(), *markerColor, *markerTolerance)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	params = params.
		WithHammingThreshold(*threshold).
		WithFirstSighting(*firstSighting)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out output
	if *videoPath != "" {
		out, err = runVideo(ctx, *videoPath, *lang, *outDir, *workers, params, log)
	} else {
		out, err = runImage(*imagePath, *roiFlag, *lang, params)
	}
	if err != nil {
		out = output{Error: err.Error()}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.Encode(out)
	if err != nil {
		os.Exit(1)
	}
}

func runVideo(ctx context.Context, path, lang, outDir string, workers int, params vision.Params, log *zap.Logger) (output, error) {
	if !isVideo(path) {
		return output{}, fmt.Errorf("unsupported video format: %s", filepath.Ext(path))
	}

	if outDir == "" {
		dir, err := os.MkdirTemp("", "dialogscan-")
		if err != nil {
			return output{}, fmt.Errorf("failed to create crop dir: %w", err)
		}
		outDir = dir
	}
	store, err := pipeline.NewDirCropStore(outDir)
	if err != nil {
		return output{}, err
	}

	driver := pipeline.NewDriver(store,
		pipeline.WithParams(params),
		pipeline.WithWorkers(workers),
		pipeline.WithLogger(log))

	results, err := driver.Run(ctx, path, lang, func(p pipeline.Progress) {
		if p.Phase == pipeline.PhaseOCR || p.Current == p.Total {
			log.Info("progress", zap.String("phase", string(p.Phase)), zap.Int("current", p.Current), zap.Int("total", p.Total))
		}
	})
	if err != nil {
		return output{}, err
	}
	return output{OK: true, Dialogues: results, CropDir: store.Dir()}, nil
}

func runImage(path, roiFlag, lang string, params vision.Params) (output, error) {
	if !stillimage.IsSupportedFormat(path) {
		return output{}, fmt.Errorf("unsupported image format %q (supported: %s)",
			filepath.Ext(path), strings.Join(stillimage.SupportedFormats(), ", "))
	}

	roi, err := parseROI(roiFlag)
	if err != nil {
		return output{}, err
	}

	img, err := stillimage.Load(path)
	if err != nil {
		return output{}, err
	}
	defer img.Close()

	engine, err := ocr.NewEngine(lang)
	if err != nil {
		return output{}, err
	}
	defer engine.Close()

	text, err := pipeline.RecognizeStill(img, roi, engine, lang, params)
	if err != nil {
		return output{}, err
	}
	return output{OK: true, Text: text}, nil
}

// parseROI parses "x,y,w,h". An empty string means the whole image.
func parseROI(s string) (geometry.RectInt, error) {
	if strings.TrimSpace(s) == "" {
		return geometry.RectInt{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.RectInt{}, fmt.Errorf("roi must be x,y,w,h: %q", s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.RectInt{}, fmt.Errorf("roi must be x,y,w,h: %q", s)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return geometry.RectInt{}, errors.New("roi width and height must be positive")
	}
	return geometry.RectInt{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// markerParams replaces the speaker-name marker band when a color is given.
func markerParams(p vision.Params, hex string, tolerance int) (vision.Params, error) {
	if hex == "" {
		return p, nil
	}
	if tolerance < 0 || tolerance > 255 {
		return p, fmt.Errorf("marker tolerance must be within 0-255: %d", tolerance)
	}
	c, err := colorutil.ParseHex(hex)
	if err != nil {
		return p, err
	}
	return p.WithMarkerBand(colorutil.BandAround(c, uint8(tolerance))), nil
}

func isVideo(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range videoExts {
		if ext == e {
			return true
		}
	}
	return false
}
