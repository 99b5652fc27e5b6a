package analysis

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// Config holds engine options.
type Config struct {
	// DedupPolicy selects how repeated poses are emitted.
	DedupPolicy DedupPolicy

	// DedupGap is the time-gap policy threshold in seconds (default: 2.0).
	DedupGap float64

	// BaselineSeed seeds the quality baseline when FixedBaseline is zero.
	BaselineSeed int64

	// FixedBaseline, when non-zero, replaces the seeded baseline.
	FixedBaseline float64

	Logger *slog.Logger
}

// DefaultConfig returns the time-gap policy with a seeded baseline.
func DefaultConfig() Config {
	return Config{
		DedupPolicy:  DedupTimeGap,
		DedupGap:     defaultDedupGap,
		BaselineSeed: 1,
	}
}

// Engine runs measurement, classification and scoring over a frame series.
// An Engine holds no per-run state and may be shared.
type Engine struct {
	config Config
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(config Config) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{config: config, logger: logger}
}

func (e *Engine) baseline() Baseline {
	if e.config.FixedBaseline != 0 {
		return FixedBaseline(e.config.FixedBaseline)
	}
	return SeededBaseline(e.config.BaselineSeed)
}

// Analyze produces the full assessment for frames. Each call starts a fresh
// baseline sequence, so identical input yields identical output.
func (e *Engine) Analyze(frames []pose.JointFrame) (*Result, error) {
	if len(frames) == 0 {
		return nil, ErrNoData
	}

	ordered := make([]pose.JointFrame, len(frames))
	copy(ordered, frames)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	m, err := Measure(ordered)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	classifier := &Classifier{Policy: e.config.DedupPolicy, Gap: e.config.DedupGap}
	events := classifier.Detect(ordered, e.baseline())

	result, err := Aggregate(&m, ordered, events)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	e.logger.Debug("analysis complete",
		"frames", len(ordered),
		"poses", len(events),
		"overall", result.OverallScore,
	)
	return result, nil
}

// Rescore recomputes posing, pose scores and overall after the pose list
// changed, leaving the measurement-derived categories untouched.
func Rescore(r *Result, events []DetectedPoseEvent) {
	r.DetectedPoses = events
	r.PoseScores = BestPoseScores(events)
	r.CategoryScores.Posing = PosingScore(events)
	r.OverallScore = r.CategoryScores.Overall()
}
