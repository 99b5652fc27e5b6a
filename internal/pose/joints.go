// Package pose defines the body-joint types shared by the detector and the analysis engine.
package pose

import (
	"encoding/json"
	"fmt"
	"math"
)

// JointName identifies one of the body joints the analysis engine reads.
type JointName int

// Required joints. Detectors map their own landmark indices onto these.
const (
	Nose JointName = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	NumJoints
)

var jointNames = [NumJoints]string{
	Nose:          "nose",
	LeftShoulder:  "leftShoulder",
	RightShoulder: "rightShoulder",
	LeftElbow:     "leftElbow",
	RightElbow:    "rightElbow",
	LeftWrist:     "leftWrist",
	RightWrist:    "rightWrist",
	LeftHip:       "leftHip",
	RightHip:      "rightHip",
	LeftKnee:      "leftKnee",
	RightKnee:     "rightKnee",
	LeftAnkle:     "leftAnkle",
	RightAnkle:    "rightAnkle",
}

// String returns the camelCase name used in JSON payloads.
func (j JointName) String() string {
	if j < 0 || j >= NumJoints {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJointName resolves a camelCase joint name.
func ParseJointName(s string) (JointName, bool) {
	for i, name := range jointNames {
		if name == s {
			return JointName(i), true
		}
	}
	return 0, false
}

// Joint is a normalized image-space coordinate. X and Y are in [0,1] with Y
// growing downward; Z is relative depth.
type Joint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Skeleton holds one Joint per JointName.
type Skeleton [NumJoints]Joint

// Get returns the joint for name.
func (s *Skeleton) Get(name JointName) Joint {
	return s[name]
}

// Set stores the joint for name.
func (s *Skeleton) Set(name JointName, j Joint) {
	s[name] = j
}

// Distance returns the 3D distance between two joints of the skeleton.
func (s *Skeleton) Distance(a, b JointName) float64 {
	return Distance3D(s[a], s[b])
}

// MinVisibility returns the lowest visibility across all joints.
func (s *Skeleton) MinVisibility() float64 {
	lowest := math.Inf(1)
	for _, j := range s {
		if j.Visibility < lowest {
			lowest = j.Visibility
		}
	}
	return lowest
}

// MarshalJSON encodes the skeleton as an object keyed by joint name.
func (s Skeleton) MarshalJSON() ([]byte, error) {
	m := make(map[string]Joint, NumJoints)
	for i, j := range s {
		m[jointNames[i]] = j
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by joint name. Every required joint
// must be present.
func (s *Skeleton) UnmarshalJSON(data []byte) error {
	var m map[string]Joint
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Skeleton
	for i, name := range jointNames {
		j, ok := m[name]
		if !ok {
			return fmt.Errorf("skeleton: missing joint %q", name)
		}
		out[i] = j
	}
	*s = out
	return nil
}

// JointFrame is one sampled instant of a video.
type JointFrame struct {
	Timestamp float64  `json:"timestamp"`
	Joints    Skeleton `json:"joints"`
	Thumbnail []byte   `json:"thumbnail,omitempty"`
}

// Distance3D calculates the Euclidean distance between two joints.
func Distance3D(a, b Joint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Distance2D calculates the Euclidean distance in the image plane.
func Distance2D(a, b Joint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
