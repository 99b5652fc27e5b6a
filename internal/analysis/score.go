package analysis

import (
	"math"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

const (
	muscularityFloor = 60.0
	// posingFallback is awarded when no pose was detected at all.
	posingFallback = 65
	// muscularityScale converts normalized limb spans to score units.
	muscularityScale = 50.0
)

// Aggregate computes category scores, muscle-group tiers and the
// recommendation and judge-note texts for a measured, classified routine.
func Aggregate(m *BodyMeasurements, frames []pose.JointFrame, events []DetectedPoseEvent) (*Result, error) {
	if m == nil {
		return nil, ErrMissingMeasurements
	}
	if events == nil {
		events = []DetectedPoseEvent{}
	}

	scores := CategoryScores{
		Muscularity:  MuscularityScore(frames),
		Symmetry:     clampScore(math.Round(m.LeftRightSymmetry)),
		Conditioning: ConditioningScore(m),
		Posing:       PosingScore(events),
		Aesthetics:   AestheticsScore(m),
	}

	return &Result{
		Measurements:    *m,
		DetectedPoses:   events,
		PoseScores:      BestPoseScores(events),
		MuscleGroups:    MuscleGroups(frames),
		CategoryScores:  scores,
		OverallScore:    scores.Overall(),
		Recommendations: Recommendations(m),
		JudgeNotes:      JudgeNotes(m),
	}, nil
}

// MuscularityScore compares upper-body and lower-body spans per frame and
// rewards both size and balance between the halves.
func MuscularityScore(frames []pose.JointFrame) int {
	if len(frames) == 0 {
		return int(muscularityFloor)
	}

	var sum float64
	for i := range frames {
		s := &frames[i].Joints
		upperArm := (s.Distance(pose.LeftShoulder, pose.LeftElbow) + s.Distance(pose.RightShoulder, pose.RightElbow)) / 2
		thigh := (s.Distance(pose.LeftHip, pose.LeftKnee) + s.Distance(pose.RightHip, pose.RightKnee)) / 2

		upper := (s.Distance(pose.LeftShoulder, pose.RightShoulder) + upperArm) * muscularityScale
		lower := (s.Distance(pose.LeftHip, pose.RightHip) + thigh) * muscularityScale

		larger := math.Max(upper, lower)
		if larger == 0 {
			continue
		}
		balance := 1 - math.Abs(upper-lower)/larger
		sum += (upper + lower) * balance
	}

	v := math.Round(sum / float64(len(frames)))
	return clampScore(math.Max(muscularityFloor, v))
}

// conditioningBase maps the V-taper ratio onto the stepped base score.
func conditioningBase(ratio float64) float64 {
	switch {
	case ratio >= 1.5:
		return 95
	case ratio >= 1.4:
		return 88
	case ratio >= 1.3:
		return 80
	case ratio >= 1.2:
		return 72
	}
	return 65
}

// ConditioningScore is the V-taper step plus a tenth of the symmetry score.
func ConditioningScore(m *BodyMeasurements) int {
	v := conditioningBase(m.VTaperRatio) + m.LeftRightSymmetry*0.1
	return clampScore(math.Round(v))
}

// PosingScore blends mean pose quality, the number of poses hit against the
// eight mandatory ones, and consistency of quality across the routine.
func PosingScore(events []DetectedPoseEvent) int {
	if len(events) == 0 {
		return posingFallback
	}

	var total float64
	for _, ev := range events {
		total += float64(ev.QualityScore)
	}
	n := float64(len(events))
	mean := total / n

	var variance float64
	for _, ev := range events {
		d := float64(ev.QualityScore) - mean
		variance += d * d
	}
	variance /= n

	variety := math.Min(100, n/float64(len(MandatoryPoses))*100)
	consistency := math.Max(0, 100-variance)

	return clampScore(math.Round(0.5*mean + 0.3*variety + 0.2*consistency))
}

func taperScore(ratio float64) float64 {
	switch {
	case ratio >= 1.5:
		return 95
	case ratio >= 1.4:
		return 88
	case ratio >= 1.3:
		return 80
	}
	return 70
}

// AestheticsScore weighs V-taper, symmetry and upper/lower proportion.
func AestheticsScore(m *BodyMeasurements) int {
	proportion := math.Min(100, m.UpperLowerRatio*70)
	v := 0.4*taperScore(m.VTaperRatio) + 0.4*m.LeftRightSymmetry + 0.2*proportion
	return clampScore(math.Round(v))
}

type muscleBand struct {
	group        string
	high, medium float64
	measure      func(s *pose.Skeleton) float64
}

var muscleBands = []muscleBand{
	{"shoulders", 0.30, 0.20, func(s *pose.Skeleton) float64 {
		return s.Distance(pose.LeftShoulder, pose.RightShoulder)
	}},
	{"chest", 0.15, 0.08, func(s *pose.Skeleton) float64 {
		return math.Abs((s[pose.LeftShoulder].Z + s[pose.RightShoulder].Z) / 2)
	}},
	{"lats", 0.28, 0.18, func(s *pose.Skeleton) float64 {
		return s.Distance(pose.LeftShoulder, pose.RightShoulder) * 0.9
	}},
	{"arms", 0.25, 0.15, func(s *pose.Skeleton) float64 {
		return (s.Distance(pose.LeftShoulder, pose.LeftElbow) + s.Distance(pose.RightShoulder, pose.RightElbow)) / 2
	}},
	{"quads", 0.35, 0.25, func(s *pose.Skeleton) float64 {
		return (s.Distance(pose.LeftHip, pose.LeftKnee) + s.Distance(pose.RightHip, pose.RightKnee)) / 2
	}},
	{"calves", 0.25, 0.15, func(s *pose.Skeleton) float64 {
		return (s.Distance(pose.LeftKnee, pose.LeftAnkle) + s.Distance(pose.RightKnee, pose.RightAnkle)) / 2
	}},
}

// MuscleGroups grades each muscle group from its mean proxy span.
func MuscleGroups(frames []pose.JointFrame) map[string]DevelopmentTier {
	groups := make(map[string]DevelopmentTier, len(muscleBands))
	for _, band := range muscleBands {
		var mean float64
		if len(frames) > 0 {
			for i := range frames {
				mean += band.measure(&frames[i].Joints)
			}
			mean /= float64(len(frames))
		}

		switch {
		case mean >= band.high:
			groups[band.group] = DevelopmentHigh
		case mean >= band.medium:
			groups[band.group] = DevelopmentMedium
		default:
			groups[band.group] = DevelopmentLow
		}
	}
	return groups
}
