package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultThumbnailWidth is the width in pixels of encoded pose snapshots.
const DefaultThumbnailWidth = 320

// FrameBuffer is a reusable decode target owned by a single sampling loop.
// Close must be called when the loop ends.
type FrameBuffer struct {
	mat gocv.Mat
}

// NewFrameBuffer allocates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{mat: gocv.NewMat()}
}

// Mat exposes the buffer for decoding and detection.
func (b *FrameBuffer) Mat() *gocv.Mat {
	return &b.mat
}

// Empty reports whether the buffer holds no pixels.
func (b *FrameBuffer) Empty() bool {
	return b.mat.Empty()
}

// Thumbnail encodes a JPEG of the current frame scaled to width pixels.
// Frames narrower than width are encoded at their own size.
func (b *FrameBuffer) Thumbnail(width int) ([]byte, error) {
	if b.mat.Empty() {
		return nil, ErrEmptyFrame
	}

	src := b.mat
	if width > 0 && b.mat.Cols() > width {
		scale := float64(width) / float64(b.mat.Cols())
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(b.mat, &resized, image.Point{}, scale, scale, gocv.InterpolationArea)
		if resized.Empty() {
			return nil, fmt.Errorf("resize thumbnail: %w", ErrEmptyFrame)
		}
		src = resized
	}

	buf, err := gocv.IMEncode(".jpg", src)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the buffer's native memory.
func (b *FrameBuffer) Close() error {
	return b.mat.Close()
}
