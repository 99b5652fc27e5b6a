package detector

import (
	"fmt"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// MediaPipe Pose emits 33 landmarks; the service output is indexed this way.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	mpNose          = 0
	mpLeftShoulder  = 11
	mpRightShoulder = 12
	mpLeftElbow     = 13
	mpRightElbow    = 14
	mpLeftWrist     = 15
	mpRightWrist    = 16
	mpLeftHip       = 23
	mpRightHip      = 24
	mpLeftKnee      = 25
	mpRightKnee     = 26
	mpLeftAnkle     = 27
	mpRightAnkle    = 28
	mpNumLandmarks  = 33
)

var mediaPipeIndex = [pose.NumJoints]int{
	pose.Nose:          mpNose,
	pose.LeftShoulder:  mpLeftShoulder,
	pose.RightShoulder: mpRightShoulder,
	pose.LeftElbow:     mpLeftElbow,
	pose.RightElbow:    mpRightElbow,
	pose.LeftWrist:     mpLeftWrist,
	pose.RightWrist:    mpRightWrist,
	pose.LeftHip:       mpLeftHip,
	pose.RightHip:      mpRightHip,
	pose.LeftKnee:      mpLeftKnee,
	pose.RightKnee:     mpRightKnee,
	pose.LeftAnkle:     mpLeftAnkle,
	pose.RightAnkle:    mpRightAnkle,
}

// Landmark is one point as reported by the pose service.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// FromMediaPipe picks the required joints out of a full MediaPipe landmark list.
func FromMediaPipe(points []Landmark) (*pose.Skeleton, error) {
	if len(points) < mpNumLandmarks {
		return nil, fmt.Errorf("expected %d landmarks, got %d", mpNumLandmarks, len(points))
	}

	var s pose.Skeleton
	for joint, idx := range mediaPipeIndex {
		p := points[idx]
		s[joint] = pose.Joint{X: p.X, Y: p.Y, Z: p.Z, Visibility: p.Visibility}
	}
	return &s, nil
}
