package scan

import (
	"dialogue-ocr/internal/vision"

	"gocv.io/x/gocv"
)

// Event is one detected dialogue change. The Mats are owned by the event and
// released by Close.
type Event struct {
	// Index is the position of the event in scan order, from 0.
	Index int
	// FrameIndex is the 1-based frame the change was seen on.
	FrameIndex int
	// Side is the half of the screen the dialogue box was in.
	Side vision.Side
	// Bubble is the located dialogue box, in binarized coordinates.
	Bubble vision.Region

	// Dialogue is the binarized frame with everything outside the box zeroed.
	Dialogue gocv.Mat
	// Name is the speaker-name crop from the raw frame.
	Name gocv.Mat
	// Crop is the dialogue box cut from the raw frame.
	Crop gocv.Mat
}

// Close releases the event's images.
func (e *Event) Close() error {
	e.Dialogue.Close()
	e.Name.Close()
	return e.Crop.Close()
}

// CloseEvents releases every event in events.
func CloseEvents(events []*Event) {
	for _, e := range events {
		e.Close()
	}
}
