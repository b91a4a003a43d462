package scan

import (
	"context"

	"dialogue-ocr/internal/vision"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// FrameFunc is called once per consumed frame with a 1-based frame counter and
// the source's total frame count.
type FrameFunc func(current, total int)

// Scanner turns raw frames into dialogue change events.
type Scanner struct {
	params   vision.Params
	detector *ChangeDetector
	log      *zap.Logger

	frames int
	events int
}

// NewScanner creates a scanner with fresh tracking state. A nil logger
// disables logging.
func NewScanner(params vision.Params, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		params:   params,
		detector: NewChangeDetector(params),
		log:      log,
	}
}

// Step consumes one raw frame. It returns an event when the dialogue box
// changed, or nil when the frame was rejected or only updated tracking state.
// raw is not retained.
func (s *Scanner) Step(raw gocv.Mat) *Event {
	s.frames++

	binary := vision.Binarize(raw, s.params)
	defer binary.Close()

	bubbles := vision.LocateBubbles(binary, s.params)
	bubble, changed := s.detector.Step(binary, bubbles)
	if !changed {
		return nil
	}

	mask := vision.BuildMask(bubbles, binary.Rows(), binary.Cols())
	defer mask.Close()

	side := vision.ClassifySide(bubble, binary.Cols())
	ev := &Event{
		Index:      s.events,
		FrameIndex: s.frames,
		Side:       side,
		Bubble:     bubble,
		Dialogue:   vision.ApplyMask(binary, mask),
		Name:       vision.ExtractNameRegion(raw, side, s.params),
		Crop:       vision.CropBubble(raw, bubble, s.params),
	}
	s.events++

	s.log.Debug("dialogue change",
		zap.Int("frame", s.frames),
		zap.Int("event", ev.Index),
		zap.Stringer("side", side),
		zap.Int("x", bubble.Rect.X),
		zap.Int("y", bubble.Rect.Y))

	return ev
}

// Scan reads src to the end and collects every event. It takes ownership of
// src and closes it on return. Cancellation is checked between frames; on
// cancellation the events gathered so far are released and ctx.Err() is
// returned.
func (s *Scanner) Scan(ctx context.Context, src FrameSource, onFrame FrameFunc) ([]*Event, error) {
	defer src.Close()

	total := src.FrameCount()
	raw := gocv.NewMat()
	defer raw.Close()

	var events []*Event
	for {
		if err := ctx.Err(); err != nil {
			CloseEvents(events)
			return nil, err
		}

		if !src.Read(&raw) {
			break
		}

		if ev := s.Step(raw); ev != nil {
			events = append(events, ev)
		}

		if onFrame != nil {
			onFrame(s.frames, total)
		}
	}

	st := s.Stats()
	s.log.Info("scan complete",
		zap.Int("frames", st.Frames),
		zap.Int("events", st.Events),
		zap.Int("comparisons", st.Comparisons),
		zap.Float64("mean_distance", st.MeanDistance),
		zap.Float64("stddev_distance", st.StdDevDistance),
		zap.Float64("max_distance", st.MaxDistance))

	return events, nil
}

// Stats summarizes the frames seen so far.
func (s *Scanner) Stats() Stats {
	st := distanceStats(s.detector.Distances())
	st.Frames = s.frames
	st.Events = s.events
	return st
}

// Close releases the tracking state.
func (s *Scanner) Close() error {
	return s.detector.Close()
}
