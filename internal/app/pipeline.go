package app

import (
	"context"
	"fmt"
	"time"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/capture"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/metrics"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

// Stage names a step of an analysis run.
type Stage string

const (
	StageSampling  Stage = "sampling"
	StageAnalyzing Stage = "analyzing"
	StageSaving    Stage = "saving"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)

// Progress is published while an analysis runs.
type Progress struct {
	JobID string `json:"jobId"`
	Video string `json:"video"`
	Stage Stage  `json:"stage"`
	Frame int    `json:"frame"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

func (a *App) publish(p Progress) {
	if a.config.OnProgress != nil {
		a.config.OnProgress(p)
	}
}

// sampleVideo walks the sampled timestamps of run.Video and returns one
// JointFrame per timestamp where a body was found.
//
// For each timestamp:
//  1. stop if ctx is done
//  2. seek and wait the settle delay
//  3. decode into the shared buffer
//  4. detect joints; frames without a body are dropped
//  5. encode a thumbnail of the kept frame
func (a *App) sampleVideo(ctx context.Context, run *Run) ([]pose.JointFrame, error) {
	src := a.config.OpenSource(run.Video)
	if err := src.Open(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", run.Video, err)
	}
	defer src.Close()

	run.Duration = src.Duration()
	times := capture.Timestamps(run.Duration, a.config.SampleInterval)
	if len(times) == 0 {
		return nil, fmt.Errorf("analyze %s: zero-length video: %w", run.Video, analysis.ErrNoData)
	}

	buf := capture.NewFrameBuffer()
	defer buf.Close()

	frames := make([]pose.JointFrame, 0, len(times))
	for i, t := range times {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, ok := a.sampleAt(ctx, src, buf, t)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok {
			frames = append(frames, frame)
			run.Sampled++
		} else {
			run.Dropped++
		}

		a.publish(Progress{JobID: run.ID, Video: run.Video, Stage: StageSampling, Frame: i + 1, Total: len(times)})
	}

	metrics.AddFrames(run.Sampled+run.Dropped, run.Dropped)

	if len(frames) == 0 {
		return nil, fmt.Errorf("analyze %s: %w", run.Video, analysis.ErrNoData)
	}
	return frames, nil
}

// sampleAt extracts a single frame. It reports false when the frame should
// be dropped.
func (a *App) sampleAt(ctx context.Context, src capture.Source, buf *capture.FrameBuffer, t float64) (pose.JointFrame, bool) {
	if err := src.Seek(t); err != nil {
		a.logger.Warn("seek failed", "t", t, "error", err)
		return pose.JointFrame{}, false
	}

	if a.config.SettleDelay > 0 {
		timer := time.NewTimer(a.config.SettleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return pose.JointFrame{}, false
		case <-timer.C:
		}
	}

	if err := src.Read(buf); err != nil {
		a.logger.Debug("frame read failed", "t", t, "error", err)
		return pose.JointFrame{}, false
	}

	a.detectMu.Lock()
	skeleton, err := a.config.Detector.Detect(buf.Mat())
	a.detectMu.Unlock()
	if err != nil {
		a.logger.Warn("pose detection failed", "t", t, "error", err)
		return pose.JointFrame{}, false
	}
	if skeleton == nil {
		a.logger.Debug("no body in frame", "t", t)
		return pose.JointFrame{}, false
	}

	frame := pose.JointFrame{Timestamp: t, Joints: *skeleton}
	if thumb, err := buf.Thumbnail(a.config.ThumbnailWidth); err == nil {
		frame.Thumbnail = thumb
	} else {
		a.logger.Debug("thumbnail skipped", "t", t, "error", err)
	}
	return frame, true
}
