package capture

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestVideoFile_NotOpen(t *testing.T) {
	src := NewVideoFile(filepath.Join(t.TempDir(), "missing.mp4"))

	if src.IsOpen() {
		t.Error("source should not be open before Open")
	}
	if err := src.Seek(1); !errors.Is(err, ErrSourceNotOpen) {
		t.Errorf("expected ErrSourceNotOpen from Seek, got %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("close of unopened source: %v", err)
	}
}

func TestVideoFile_OpenMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV video backend test in short mode")
	}

	src := NewVideoFile(filepath.Join(t.TempDir(), "missing.mp4"))
	if err := src.Open(); err == nil {
		src.Close()
		t.Fatal("expected error opening a missing file")
	}
	if src.IsOpen() {
		t.Error("source should not be open after failed Open")
	}
}

func TestFrameBuffer(t *testing.T) {
	buf := NewFrameBuffer()
	defer buf.Close()

	if !buf.Empty() {
		t.Error("new buffer should be empty")
	}
	if _, err := buf.Thumbnail(DefaultThumbnailWidth); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("expected ErrEmptyFrame, got %v", err)
	}
}

func TestMockSource(t *testing.T) {
	src := NewMockSource(3)
	buf := NewFrameBuffer()
	defer buf.Close()

	if err := src.Read(buf); !errors.Is(err, ErrSourceNotOpen) {
		t.Errorf("expected ErrSourceNotOpen, got %v", err)
	}

	readErr := errors.New("corrupt packet")
	src.SetReadError(1, readErr)

	if err := src.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	for i, ts := range Timestamps(src.Duration(), 1) {
		if err := src.Seek(ts); err != nil {
			t.Fatalf("seek: %v", err)
		}
		err := src.Read(buf)
		if i == 1 && !errors.Is(err, readErr) {
			t.Errorf("read %d: expected scripted error, got %v", i, err)
		}
		if i != 1 && err != nil {
			t.Errorf("read %d: unexpected error %v", i, err)
		}
	}

	if got := src.Seeks(); len(got) != 3 || got[2] != 2 {
		t.Errorf("unexpected seeks %v", got)
	}

	src.Close()
	if src.IsOpen() || src.CloseCalls() != 1 {
		t.Error("expected source to be closed once")
	}

	var _ Source = (*MockSource)(nil)
}
