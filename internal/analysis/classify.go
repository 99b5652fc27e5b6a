package analysis

import (
	"math"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// Classifier thresholds, in normalized image units or multiples of shoulder span.
const (
	raisedMargin    = 0.05
	elbowMargin     = 0.05
	nearHipBand     = 0.15
	wideFactor      = 1.6
	narrowFactor    = 1.4
	closeFactor     = 0.7
	crossedFactor   = 0.3
	defaultDedupGap = 2.0
)

// DedupPolicy decides when a repeated pose is emitted again.
type DedupPolicy int

const (
	// DedupTimeGap re-emits a pose when the name changes or the gap since the
	// last emission exceeds the configured threshold.
	DedupTimeGap DedupPolicy = iota
	// DedupFirstOnly emits each pose name at most once per run.
	DedupFirstOnly
)

// ParseDedupPolicy maps the config value ("time" or "first") to a policy.
func ParseDedupPolicy(s string) (DedupPolicy, bool) {
	switch s {
	case "", "time":
		return DedupTimeGap, true
	case "first":
		return DedupFirstOnly, true
	}
	return 0, false
}

type signals struct {
	armSpread, shoulderSpread float64
	shoulderMidY, hipMidY     float64

	bothArmsRaised            bool
	armsWide, armsNarrow      bool
	handsClose, handsMid      bool
	armsDown                  bool
	leftElbowHigh             bool
	rightElbowHigh            bool
	leftHandNearHip           bool
	rightHandNearHip          bool
	leftArmCrossed            bool
	rightArmCrossed           bool
	leftArmHigh, rightArmHigh bool
}

func computeSignals(s *pose.Skeleton) signals {
	lsh, rsh := s[pose.LeftShoulder], s[pose.RightShoulder]
	lel, rel := s[pose.LeftElbow], s[pose.RightElbow]
	lwr, rwr := s[pose.LeftWrist], s[pose.RightWrist]
	lhip, rhip := s[pose.LeftHip], s[pose.RightHip]

	g := signals{
		armSpread:      pose.Distance3D(lwr, rwr),
		shoulderSpread: pose.Distance3D(lsh, rsh),
		shoulderMidY:   (lsh.Y + rsh.Y) / 2,
		hipMidY:        (lhip.Y + rhip.Y) / 2,
	}

	g.bothArmsRaised = lwr.Y < lsh.Y-raisedMargin && rwr.Y < rsh.Y-raisedMargin
	g.armsWide = g.armSpread > g.shoulderSpread*wideFactor
	g.armsNarrow = g.armSpread < g.shoulderSpread*narrowFactor
	g.handsClose = g.armSpread < g.shoulderSpread*closeFactor
	g.leftElbowHigh = lel.Y < lsh.Y+elbowMargin
	g.rightElbowHigh = rel.Y < rsh.Y+elbowMargin
	g.leftHandNearHip = math.Abs(lwr.Y-lhip.Y) < nearHipBand
	g.rightHandNearHip = math.Abs(rwr.Y-rhip.Y) < nearHipBand
	g.leftArmCrossed = math.Abs(lwr.X-rsh.X) < g.shoulderSpread*crossedFactor
	g.rightArmCrossed = math.Abs(rwr.X-lsh.X) < g.shoulderSpread*crossedFactor
	g.leftArmHigh = lwr.Y < g.shoulderMidY
	g.rightArmHigh = rwr.Y < g.shoulderMidY
	g.armsDown = lwr.Y > g.hipMidY && rwr.Y > g.hipMidY
	g.handsMid = lwr.Y > g.shoulderMidY && lwr.Y < g.hipMidY

	return g
}

// ClassifyFrame names the pose held in a single skeleton. Rules are tried in
// order and the first match wins.
func ClassifyFrame(s pose.Skeleton) PoseName {
	g := computeSignals(&s)
	elbowHigh := g.leftElbowHigh || g.rightElbowHigh

	switch {
	case g.bothArmsRaised && g.armsWide && elbowHigh:
		return BackDoubleBiceps
	case g.bothArmsRaised && elbowHigh && !g.armsWide:
		return FrontDoubleBiceps
	case g.armsWide && g.leftHandNearHip && g.rightHandNearHip && !g.bothArmsRaised:
		return FrontLatSpread
	case g.armsWide && !g.bothArmsRaised && (!g.leftHandNearHip || !g.rightHandNearHip):
		return BackLatSpread
	case (g.leftArmCrossed || g.rightArmCrossed) && !g.bothArmsRaised:
		return SideTriceps
	case g.leftArmHigh != g.rightArmHigh && !g.armsWide:
		return SideChest
	case g.handsClose && g.handsMid && !g.armsDown:
		return MostMuscular
	case g.armsDown && g.armsNarrow:
		return AbsAndThighs
	}
	return GeneralTransitionPose
}

// Classifier turns a frame series into a deduplicated pose timeline.
type Classifier struct {
	Policy DedupPolicy
	Gap    float64
}

// NewClassifier returns a time-gap classifier with the default 2 second gap.
func NewClassifier() *Classifier {
	return &Classifier{Policy: DedupTimeGap, Gap: defaultDedupGap}
}

// Detect classifies each frame and emits pose events according to the
// dedup policy. Frames must be ordered by timestamp.
func (c *Classifier) Detect(frames []pose.JointFrame, baseline Baseline) []DetectedPoseEvent {
	events := make([]DetectedPoseEvent, 0)
	if len(frames) == 0 {
		return events
	}

	gap := c.Gap
	if gap <= 0 {
		gap = defaultDedupGap
	}

	var lastName PoseName
	lastTimestamp := math.Inf(-1)
	seen := make(map[PoseName]bool)

	for i := range frames {
		f := &frames[i]
		name := ClassifyFrame(f.Joints)

		var emit bool
		switch c.Policy {
		case DedupFirstOnly:
			emit = !seen[name]
		default:
			emit = name != lastName || f.Timestamp-lastTimestamp > gap
		}
		if !emit {
			continue
		}

		symmetry := FrameSymmetry(&f.Joints)
		joints := f.Joints
		events = append(events, DetectedPoseEvent{
			PoseName:     name,
			Timestamp:    int(math.Round(f.Timestamp)),
			QualityScore: clampScore(math.Round((symmetry + baseline.Next()) / 2)),
			Thumbnail:    f.Thumbnail,
			RawJoints:    &joints,
		})
		seen[name] = true
		lastName = name
		lastTimestamp = f.Timestamp
	}

	return events
}
