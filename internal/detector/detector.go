// Package detector extracts body joints from video frames.
package detector

import (
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// Detector defines the interface for body joint extraction.
type Detector interface {
	// Detect analyzes a video frame and returns the subject's skeleton.
	// Returns nil when no body is found in the frame.
	Detect(frame *gocv.Mat) (*pose.Skeleton, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// ScriptPath is the pose service script. Empty means search the usual locations.
	ScriptPath string

	// PythonPath is the interpreter. Empty means a venv python if found, else python3.
	PythonPath string

	// MinConfidence is the lowest acceptable joint visibility (0.0-1.0).
	// Skeletons with any required joint below it are treated as no body.
	MinConfidence float64

	// IdleTimeout stops the service after this long without requests.
	IdleTimeout time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.5,
		IdleTimeout:   30 * time.Second,
	}
}
