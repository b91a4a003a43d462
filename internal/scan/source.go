package scan

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrUnopenableSource is returned when a video cannot be opened.
var ErrUnopenableSource = errors.New("unable to open video source")

// FrameSource yields raw BGR frames in capture order.
type FrameSource interface {
	// FrameCount reports the total number of frames, or 0 if unknown.
	FrameCount() int
	// Read decodes the next frame into dst. It returns false at end of stream.
	Read(dst *gocv.Mat) bool
	// Close releases the underlying decoder.
	Close() error
}

// VideoSource is a FrameSource backed by an OpenCV video capture.
type VideoSource struct {
	capture *gocv.VideoCapture
}

// OpenVideo opens a video file for sequential reading.
func OpenVideo(path string) (*VideoSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnopenableSource, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnopenableSource, path)
	}
	return &VideoSource{capture: capture}, nil
}

// FrameCount reports the container's frame count.
func (v *VideoSource) FrameCount() int {
	return int(v.capture.Get(gocv.VideoCaptureFrameCount))
}

// Read decodes the next frame. Empty frames are treated as end of stream.
func (v *VideoSource) Read(dst *gocv.Mat) bool {
	if !v.capture.Read(dst) {
		return false
	}
	return !dst.Empty()
}

// Close releases the capture.
func (v *VideoSource) Close() error {
	return v.capture.Close()
}
