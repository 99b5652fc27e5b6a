package analysis

import (
	"fmt"
	"math"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// upperLowerRatio is reported as a constant until lower-body proportions are measured.
const upperLowerRatio = 1.1

// Symmetry is penalized by vertical misalignment of the shoulder and hip
// pairs and floored so a single tilted frame cannot dominate the mean.
const (
	symmetryPenalty = 200.0
	symmetryFloor   = 70.0
	symmetryCeiling = 100.0
)

// FrameSymmetry scores left-right alignment of a single skeleton.
func FrameSymmetry(s *pose.Skeleton) float64 {
	shoulderDiff := math.Abs(s[pose.LeftShoulder].Y - s[pose.RightShoulder].Y)
	hipDiff := math.Abs(s[pose.LeftHip].Y - s[pose.RightHip].Y)
	v := symmetryCeiling - (shoulderDiff+hipDiff)*symmetryPenalty
	return math.Max(symmetryFloor, math.Min(symmetryCeiling, v))
}

// Measure averages shoulder width, waist width and symmetry across frames.
func Measure(frames []pose.JointFrame) (BodyMeasurements, error) {
	if len(frames) == 0 {
		return BodyMeasurements{}, ErrNoData
	}

	var shoulderSum, waistSum, symmetrySum float64
	for i := range frames {
		s := &frames[i].Joints
		shoulderSum += s.Distance(pose.LeftShoulder, pose.RightShoulder)
		waistSum += s.Distance(pose.LeftHip, pose.RightHip)
		symmetrySum += FrameSymmetry(s)
	}

	n := float64(len(frames))
	shoulder := shoulderSum / n
	waist := waistSum / n
	if waist == 0 {
		return BodyMeasurements{}, fmt.Errorf("measure %d frames: %w", len(frames), ErrDegenerateMeasurement)
	}

	return BodyMeasurements{
		ShoulderWidth:     int(math.Round(shoulder * 100)),
		WaistWidth:        int(math.Round(waist * 100)),
		VTaperRatio:       round2(shoulder / waist),
		UpperLowerRatio:   upperLowerRatio,
		LeftRightSymmetry: math.Round(symmetrySum / n),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
