// Package pipeline runs dialogue extraction over a video: a sequential scan
// that collects dialogue changes, then recognition of every change.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"dialogue-ocr/internal/dialogue"
	"dialogue-ocr/internal/metrics"
	"dialogue-ocr/internal/ocr"
	"dialogue-ocr/internal/scan"
	"dialogue-ocr/internal/vision"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PrimaryFactory builds one primary recognizer. Recognizers that implement
// io.Closer are closed when the run ends.
type PrimaryFactory func(lang string) (ocr.Recognizer, error)

// SecondaryFactory builds the fallback reader shared by all workers of a run.
type SecondaryFactory func(lang string) (ocr.FragmentReader, error)

// SourceOpener opens a video for scanning.
type SourceOpener func(path string) (scan.FrameSource, error)

// Driver runs the two-phase extraction.
type Driver struct {
	params       vision.Params
	workers      int
	store        CropStore
	open         SourceOpener
	newPrimary   PrimaryFactory
	newSecondary SecondaryFactory
	log          *zap.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithParams overrides the calibration parameters.
func WithParams(p vision.Params) Option {
	return func(d *Driver) { d.params = p }
}

// WithWorkers sets the number of parallel recognition workers.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithSourceOpener replaces the video opener.
func WithSourceOpener(open SourceOpener) Option {
	return func(d *Driver) { d.open = open }
}

// WithRecognizers replaces the recognizer factories.
func WithRecognizers(primary PrimaryFactory, secondary SecondaryFactory) Option {
	return func(d *Driver) {
		d.newPrimary = primary
		d.newSecondary = secondary
	}
}

// NewDriver creates a driver that saves crops into store. By default it reads
// video with OpenCV and recognizes with Tesseract on a single worker.
func NewDriver(store CropStore, opts ...Option) *Driver {
	d := &Driver{
		params:  vision.DefaultParams(),
		workers: 1,
		store:   store,
		open: func(path string) (scan.FrameSource, error) {
			return scan.OpenVideo(path)
		},
		newPrimary: func(lang string) (ocr.Recognizer, error) {
			return ocr.NewEngine(lang)
		},
		newSecondary: func(lang string) (ocr.FragmentReader, error) {
			return ocr.NewWordReader(lang)
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run extracts the dialogue of the video at path. progress may be nil.
// An unopenable video fails with scan.ErrUnopenableSource. Cancellation is
// honored between frames and between recognitions.
func (d *Driver) Run(ctx context.Context, path, lang string, progress ProgressFunc) ([]dialogue.Result, error) {
	if progress == nil {
		progress = func(Progress) {}
	}
	if lang == "" {
		lang = ocr.DefaultLanguage
	}

	events, err := d.scan(ctx, path, progress)
	if err != nil {
		return nil, err
	}
	defer scan.CloseEvents(events)

	return d.recognize(ctx, events, lang, progress)
}

func (d *Driver) scan(ctx context.Context, path string, progress ProgressFunc) ([]*scan.Event, error) {
	start := time.Now()
	defer func() {
		metrics.PhaseDuration.WithLabelValues(string(PhaseScan)).Observe(time.Since(start).Seconds())
	}()

	src, err := d.open(path)
	if err != nil {
		return nil, err
	}

	scanner := scan.NewScanner(d.params, d.log)
	defer scanner.Close()

	events, err := scanner.Scan(ctx, src, func(current, total int) {
		metrics.FramesScannedTotal.Inc()
		progress(Progress{Phase: PhaseScan, Current: current, Total: total})
	})
	if err != nil {
		return nil, err
	}
	metrics.DialogueChangesTotal.Add(float64(len(events)))

	d.log.Info("scan finished", zap.String("path", path), zap.Int("events", len(events)))
	return events, nil
}

func (d *Driver) recognize(ctx context.Context, events []*scan.Event, lang string, progress ProgressFunc) ([]dialogue.Result, error) {
	acc := dialogue.NewAccumulator()
	if len(events) == 0 {
		return acc.Results(), nil
	}

	start := time.Now()
	defer func() {
		metrics.PhaseDuration.WithLabelValues(string(PhaseOCR)).Observe(time.Since(start).Seconds())
	}()

	secondary, err := d.newSecondary(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback recognizer: %w", err)
	}
	defer closeIfCloser(secondary)

	workers := min(d.workers, len(events))
	pool := make(chan ocr.Recognizer, workers)
	defer func() {
		close(pool)
		for r := range pool {
			closeIfCloser(r)
		}
	}()
	for i := 0; i < workers; i++ {
		primary, err := d.newPrimary(lang)
		if err != nil {
			return nil, fmt.Errorf("failed to create recognizer: %w", err)
		}
		pool <- primary
	}

	total := len(events)
	results := make([]dialogue.Result, total)
	done := make([]bool, total)
	next := 0
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ev := range events {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			primary := <-pool
			defer func() { pool <- primary }()

			disp := ocr.NewDispatcher(primary, secondary, d.params, d.log)
			speaker, text, err := disp.Recognize(ev.Dialogue, ev.Name, lang)
			if err != nil {
				return fmt.Errorf("event %d: %w", ev.Index, err)
			}

			cropID, err := d.store.Save(ev.Index, ev.Crop)
			if err != nil {
				return fmt.Errorf("event %d: %w", ev.Index, err)
			}

			mu.Lock()
			defer mu.Unlock()

			results[i] = dialogue.Result{Index: ev.Index, Speaker: speaker, Text: text, CropID: cropID}
			done[i] = true

			// Accumulation depends on the immediately preceding event, so only
			// the contiguous resolved prefix is released.
			for next < total && done[next] {
				accepted := acc.Accept(results[next])
				next++
				progress(Progress{Phase: PhaseOCR, Current: next, Total: total, Dialogue: &accepted})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.log.Info("recognition finished", zap.Int("events", total), zap.Int("dialogues", acc.Len()))
	return acc.Results(), nil
}

func closeIfCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		c.Close()
	}
}
