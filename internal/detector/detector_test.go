package detector

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

func fullLandmarks(visibility float64) []Landmark {
	points := make([]Landmark, mpNumLandmarks)
	for i := range points {
		points[i] = Landmark{X: float64(i) / 100, Y: float64(i) / 50, Z: -0.1, Visibility: visibility}
	}
	return points
}

func TestFromMediaPipe(t *testing.T) {
	t.Run("maps indices to named joints", func(t *testing.T) {
		s, err := FromMediaPipe(fullLandmarks(0.9))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := s.Get(pose.LeftShoulder).X; got != 0.11 {
			t.Errorf("expected left shoulder from index 11, got x=%v", got)
		}
		if got := s.Get(pose.RightAnkle).Y; got != 0.56 {
			t.Errorf("expected right ankle from index 28, got y=%v", got)
		}
		if got := s.Get(pose.Nose).Visibility; got != 0.9 {
			t.Errorf("expected visibility to be carried, got %v", got)
		}
	})

	t.Run("short list rejected", func(t *testing.T) {
		if _, err := FromMediaPipe(make([]Landmark, 21)); err == nil {
			t.Error("expected error for hand-sized landmark list")
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("no body", func(t *testing.T) {
		s, err := parseResponse([]byte(`{"landmarks":[]}`+"\n"), 0.5)
		if err != nil || s != nil {
			t.Errorf("expected nil skeleton and error, got %v, %v", s, err)
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"error":"decode failed"}`), 0.5)
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{`), 0.5); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("low visibility dropped", func(t *testing.T) {
		line := encodeResponse(t, fullLandmarks(0.3))
		s, err := parseResponse(line, 0.5)
		if err != nil || s != nil {
			t.Errorf("expected low-confidence body to be dropped, got %v, %v", s, err)
		}
	})

	t.Run("confident body", func(t *testing.T) {
		line := encodeResponse(t, fullLandmarks(0.8))
		s, err := parseResponse(line, 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s == nil {
			t.Fatal("expected skeleton")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns nil by default", func(t *testing.T) {
		mock := NewMockDetector()

		s, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if s != nil {
			t.Errorf("expected nil skeleton, got %v", s)
		}
	})

	t.Run("replays sequence", func(t *testing.T) {
		mock := NewMockDetector()
		a := pose.FrontDoubleBicepsSkeleton()
		b := pose.SideChestSkeleton()
		mock.SetSequence([]*pose.Skeleton{&a, nil, &b})

		want := []*pose.Skeleton{&a, nil, &b, nil}
		for i, w := range want {
			got, err := mock.Detect(nil)
			if err != nil {
				t.Fatalf("call %d: unexpected error: %v", i, err)
			}
			if got != w {
				t.Errorf("call %d: unexpected skeleton", i)
			}
		}
		if mock.Calls() != 4 {
			t.Errorf("expected 4 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		s := pose.RelaxedSkeleton()
		mock.SetSkeleton(&s)

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		got, err := mock.Detect(nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if got != nil {
			t.Error("expected nil skeleton when error is set")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestNewMediaPipeDetector(t *testing.T) {
	t.Run("missing script", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ScriptPath = filepath.Join(t.TempDir(), "nope.py")
		if _, err := NewMediaPipeDetector(cfg); err == nil {
			t.Error("expected error for missing script")
		}
	})

	t.Run("explicit script", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), poseServiceScript)
		if err := os.WriteFile(script, []byte("# stub\n"), 0644); err != nil {
			t.Fatal(err)
		}

		cfg := DefaultConfig()
		cfg.ScriptPath = script
		d, err := NewMediaPipeDetector(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := d.Close(); err != nil {
			t.Errorf("close before start: %v", err)
		}
	})
}

func encodeResponse(t *testing.T, points []Landmark) []byte {
	t.Helper()
	data, err := json.Marshal(serviceResponse{Landmarks: points})
	if err != nil {
		t.Fatal(err)
	}
	return data
}
