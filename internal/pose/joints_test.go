package pose

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

const epsilon = 1e-9

func TestJointName_String(t *testing.T) {
	tests := []struct {
		name JointName
		want string
	}{
		{Nose, "nose"},
		{LeftShoulder, "leftShoulder"},
		{RightAnkle, "rightAnkle"},
		{NumJoints, "joint(13)"},
	}

	for _, tt := range tests {
		if got := tt.name.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseJointName(t *testing.T) {
	for i := JointName(0); i < NumJoints; i++ {
		got, ok := ParseJointName(i.String())
		if !ok || got != i {
			t.Errorf("ParseJointName(%q) = %v, %v", i.String(), got, ok)
		}
	}

	if _, ok := ParseJointName("leftPinky"); ok {
		t.Error("expected unknown joint name to fail")
	}
}

func TestDistance3D(t *testing.T) {
	a := Joint{X: 0, Y: 0, Z: 0}
	b := Joint{X: 3, Y: 4, Z: 12}

	if d := Distance3D(a, b); math.Abs(d-13) > epsilon {
		t.Errorf("expected 13, got %f", d)
	}
	if d := Distance2D(a, b); math.Abs(d-5) > epsilon {
		t.Errorf("expected 5, got %f", d)
	}
}

func TestSkeleton_Distance(t *testing.T) {
	s := RelaxedSkeleton()

	if d := s.Distance(LeftShoulder, RightShoulder); math.Abs(d-0.2) > epsilon {
		t.Errorf("expected shoulder span 0.2, got %f", d)
	}
	if d := s.Distance(LeftHip, RightHip); math.Abs(d-0.15) > epsilon {
		t.Errorf("expected hip span 0.15, got %f", d)
	}
}

func TestSkeleton_MinVisibility(t *testing.T) {
	s := RelaxedSkeleton()
	s.Set(LeftKnee, Joint{X: 0.5, Y: 0.8, Visibility: 0.2})

	if v := s.MinVisibility(); math.Abs(v-0.2) > epsilon {
		t.Errorf("expected 0.2, got %f", v)
	}
}

func TestSkeleton_JSON(t *testing.T) {
	t.Run("keyed by joint name", func(t *testing.T) {
		s := FrontDoubleBicepsSkeleton()

		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !strings.Contains(string(data), `"leftWrist"`) {
			t.Errorf("expected leftWrist key in %s", data)
		}

		var decoded Skeleton
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if decoded != s {
			t.Error("decoded skeleton differs from original")
		}
	})

	t.Run("missing joint rejected", func(t *testing.T) {
		var s Skeleton
		err := json.Unmarshal([]byte(`{"nose":{"x":0.5,"y":0.1}}`), &s)
		if err == nil {
			t.Fatal("expected error for incomplete skeleton")
		}
	})

	t.Run("frame round trip keeps timestamp", func(t *testing.T) {
		f := JointFrame{Timestamp: 3.0, Joints: SideChestSkeleton()}

		data, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var decoded JointFrame
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if decoded.Timestamp != 3.0 || decoded.Joints != f.Joints {
			t.Errorf("unexpected frame %+v", decoded)
		}
	})
}
