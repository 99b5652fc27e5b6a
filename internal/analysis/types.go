// Package analysis turns a series of body-joint frames into physique
// measurements, detected bodybuilding poses and judged category scores.
package analysis

import (
	"math"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// PoseName identifies a classified bodybuilding pose.
type PoseName string

const (
	BackDoubleBiceps      PoseName = "back-double-biceps"
	FrontDoubleBiceps     PoseName = "front-double-biceps"
	FrontLatSpread        PoseName = "front-lat-spread"
	BackLatSpread         PoseName = "back-lat-spread"
	SideTriceps           PoseName = "side-triceps"
	SideChest             PoseName = "side-chest"
	MostMuscular          PoseName = "most-muscular"
	AbsAndThighs          PoseName = "abs-and-thighs"
	GeneralTransitionPose PoseName = "general-transition-pose"
)

// MandatoryPoses lists the poses counted toward posing variety.
var MandatoryPoses = []PoseName{
	FrontDoubleBiceps,
	FrontLatSpread,
	SideChest,
	BackDoubleBiceps,
	BackLatSpread,
	SideTriceps,
	AbsAndThighs,
	MostMuscular,
}

var poseAliases = map[string]PoseName{
	"backDoubleBiceps":      BackDoubleBiceps,
	"frontDoubleBiceps":     FrontDoubleBiceps,
	"frontLatSpread":        FrontLatSpread,
	"backLatSpread":         BackLatSpread,
	"sideTriceps":           SideTriceps,
	"sideChest":             SideChest,
	"mostMuscular":          MostMuscular,
	"absAndThighs":          AbsAndThighs,
	"generalTransitionPose": GeneralTransitionPose,
	"generalPose":           GeneralTransitionPose,
}

// ParsePoseName accepts either the kebab-case tag or its camelCase form.
func ParsePoseName(s string) (PoseName, bool) {
	switch p := PoseName(s); p {
	case BackDoubleBiceps, FrontDoubleBiceps, FrontLatSpread, BackLatSpread,
		SideTriceps, SideChest, MostMuscular, AbsAndThighs, GeneralTransitionPose:
		return p, true
	}
	p, ok := poseAliases[s]
	return p, ok
}

// Tier grades a recommendation or judge note.
type Tier string

const (
	TierStrength  Tier = "strength"
	TierAttention Tier = "attention"
	TierWeakness  Tier = "weakness"
)

// DevelopmentTier grades a muscle group.
type DevelopmentTier string

const (
	DevelopmentLow    DevelopmentTier = "low"
	DevelopmentMedium DevelopmentTier = "medium"
	DevelopmentHigh   DevelopmentTier = "high"
)

// BodyMeasurements are the physique proportions averaged across frames.
// Widths are in display units (normalized width x 100, rounded).
type BodyMeasurements struct {
	ShoulderWidth     int      `json:"shoulderWidth"`
	WaistWidth        int      `json:"waistWidth"`
	VTaperRatio       float64  `json:"vTaperRatio"`
	UpperLowerRatio   float64  `json:"upperLowerRatio"`
	LeftRightSymmetry float64  `json:"leftRightSymmetry"`
	BodyFatPercentage *float64 `json:"bodyFatPercentage"`
}

// DetectedPoseEvent records one emitted pose on the routine timeline.
type DetectedPoseEvent struct {
	PoseName     PoseName       `json:"poseName"`
	Timestamp    int            `json:"timestamp"`
	QualityScore int            `json:"qualityScore"`
	Thumbnail    []byte         `json:"thumbnail,omitempty"`
	ThumbnailKey string         `json:"thumbnailKey,omitempty"`
	RawJoints    *pose.Skeleton `json:"rawJoints,omitempty"`
}

// CategoryScores are the five judged categories, each in [0,100].
type CategoryScores struct {
	Muscularity  int `json:"muscularity"`
	Symmetry     int `json:"symmetry"`
	Conditioning int `json:"conditioning"`
	Posing       int `json:"posing"`
	Aesthetics   int `json:"aesthetics"`
}

// Overall returns the rounded mean of the five categories.
func (c CategoryScores) Overall() int {
	sum := c.Muscularity + c.Symmetry + c.Conditioning + c.Posing + c.Aesthetics
	return clampScore(math.Round(float64(sum) / 5))
}

// Valid reports whether every category is within [0,100].
func (c CategoryScores) Valid() bool {
	for _, v := range []int{c.Muscularity, c.Symmetry, c.Conditioning, c.Posing, c.Aesthetics} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// Recommendation is a coaching suggestion derived from a score band.
type Recommendation struct {
	Type        Tier   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// JudgeNote is a one-line observation in the voice of a judge.
type JudgeNote struct {
	Type Tier   `json:"type"`
	Text string `json:"text"`
}

// Result is the complete assessment of one video.
type Result struct {
	Measurements    BodyMeasurements           `json:"measurements"`
	DetectedPoses   []DetectedPoseEvent        `json:"detectedPoses"`
	PoseScores      map[PoseName]int           `json:"poseScores"`
	MuscleGroups    map[string]DevelopmentTier `json:"muscleGroups"`
	CategoryScores  CategoryScores             `json:"categoryScores"`
	OverallScore    int                        `json:"overallScore"`
	Recommendations []Recommendation           `json:"recommendations"`
	JudgeNotes      []JudgeNote                `json:"judgeNotes"`
}

// BestPoseScores keeps the highest quality seen for each pose name.
func BestPoseScores(events []DetectedPoseEvent) map[PoseName]int {
	scores := make(map[PoseName]int, len(events))
	for _, ev := range events {
		if cur, ok := scores[ev.PoseName]; !ok || ev.QualityScore > cur {
			scores[ev.PoseName] = ev.QualityScore
		}
	}
	return scores
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
