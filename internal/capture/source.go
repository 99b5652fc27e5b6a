// Package capture reads sampled frames from recorded video using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrSourceNotOpen is returned when reading from a source that is not open.
	ErrSourceNotOpen = errors.New("video source is not open")

	// ErrEmptyFrame is returned when a read produced no pixels.
	ErrEmptyFrame = errors.New("decoded frame is empty")
)

// Source is a seekable video.
type Source interface {
	Open() error
	Close() error
	// Duration is the length of the video in seconds.
	Duration() float64
	// Seek positions the source at t seconds.
	Seek(t float64) error
	// Read decodes the frame at the current position into buf.
	Read(buf *FrameBuffer) error
	IsOpen() bool
}

// videoFile reads frames from a file on disk.
type videoFile struct {
	path     string
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	open     bool
	duration float64
}

// NewVideoFile returns a Source for the video at path. It is not opened yet.
func NewVideoFile(path string) Source {
	return &videoFile{path: path}
}

// Open opens the file and reads its frame count and rate.
func (v *videoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.open {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(v.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video %s: unsupported or unreadable", v.path)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	frames := capture.Get(gocv.VideoCaptureFrameCount)
	if fps > 0 && frames > 0 {
		v.duration = frames / fps
	}

	v.capture = capture
	v.open = true
	return nil
}

// Close releases the underlying capture.
func (v *videoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open || v.capture == nil {
		v.open = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.open = false
	return err
}

func (v *videoFile) Duration() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.duration
}

func (v *videoFile) Seek(t float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open {
		return ErrSourceNotOpen
	}
	v.capture.Set(gocv.VideoCapturePosMsec, t*1000)
	return nil
}

// Read decodes into buf, reusing its memory.
func (v *videoFile) Read(buf *FrameBuffer) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open {
		return ErrSourceNotOpen
	}
	if ok := v.capture.Read(buf.Mat()); !ok {
		return errors.New("failed to read frame from video")
	}
	if buf.Empty() {
		return ErrEmptyFrame
	}
	return nil
}

func (v *videoFile) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}
