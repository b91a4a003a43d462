// Package scan walks a frame stream and reports the frames where the dialogue
// box content changes.
package scan

import (
	"dialogue-ocr/internal/vision"

	"gocv.io/x/gocv"
)

// State is the tracking state of a ChangeDetector.
type State int

const (
	// StateIdle means no dialogue box is currently tracked.
	StateIdle State = iota
	// StateTracking means a dialogue box and the frame it came from are held.
	StateTracking
)

func (s State) String() string {
	if s == StateTracking {
		return "tracking"
	}
	return "idle"
}

// ChangeDetector debounces dialogue boxes across consecutive binarized frames
// using difference hashes. Only the fingerprint of the tracked box is kept
// between frames.
type ChangeDetector struct {
	params vision.Params

	state      State
	prevRegion vision.Region
	prevHash   vision.Fingerprint // valid iff state == StateTracking

	distances []float64
}

// NewChangeDetector creates an idle detector.
func NewChangeDetector(params vision.Params) *ChangeDetector {
	return &ChangeDetector{params: params}
}

// State returns the current tracking state.
func (d *ChangeDetector) State() State {
	return d.state
}

// Step advances the detector by one frame. bubbles are the dialogue boxes
// located in binary. It returns the region to emit and true when the box
// content changed materially since the last frame.
func (d *ChangeDetector) Step(binary gocv.Mat, bubbles []vision.Region) (vision.Region, bool) {
	if len(bubbles) == 0 {
		d.reset()
		return vision.Region{}, false
	}

	current := bubbles[0]
	currHash := vision.RegionHash(binary, current.Rect, d.params.HashSize)

	if d.state == StateIdle {
		d.track(current, currHash)
		return current, d.params.EmitOnFirstSighting
	}

	dist := vision.Hamming(d.prevHash, currHash)
	d.distances = append(d.distances, float64(dist))

	d.track(current, currHash)
	return current, dist > d.params.HammingThreshold
}

// Distances returns every hash distance computed so far, in frame order.
func (d *ChangeDetector) Distances() []float64 {
	return d.distances
}

// Close resets the detector.
func (d *ChangeDetector) Close() error {
	d.reset()
	return nil
}

func (d *ChangeDetector) track(r vision.Region, h vision.Fingerprint) {
	d.prevRegion = r
	d.prevHash = h
	d.state = StateTracking
}

func (d *ChangeDetector) reset() {
	d.state = StateIdle
	d.prevRegion = vision.Region{}
	d.prevHash = 0
}
