package reclassify

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/metrics"
)

// DefaultConcurrency bounds parallel provider calls.
const DefaultConcurrency = 4

// ThumbnailLoader fetches the JPEG referenced by an event's ThumbnailKey.
type ThumbnailLoader func(ctx context.Context, key string) ([]byte, error)

// Summary counts what happened to each event during a run.
type Summary struct {
	Changed int `json:"changed"`
	Kept    int `json:"kept"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Reclassifier re-judges detected poses through a Provider.
type Reclassifier struct {
	Provider Provider
	Load     ThumbnailLoader

	// Concurrency bounds parallel provider calls (default: DefaultConcurrency).
	Concurrency int

	// MinConfidence drops verdicts below this confidence.
	MinConfidence int

	Logger *slog.Logger
}

// Reclassify runs p over events with default settings.
func Reclassify(ctx context.Context, p Provider, events []analysis.DetectedPoseEvent, load ThumbnailLoader) ([]analysis.DetectedPoseEvent, error) {
	out, _, err := (&Reclassifier{Provider: p, Load: load}).Run(ctx, events)
	return out, err
}

// Run returns a new event list in the original order. Events with no
// thumbnail are copied unchanged. A provider or load failure keeps the
// original event; only cancellation of ctx aborts the run.
func (r *Reclassifier) Run(ctx context.Context, events []analysis.DetectedPoseEvent) ([]analysis.DetectedPoseEvent, Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	out := make([]analysis.DetectedPoseEvent, len(events))
	copy(out, events)

	type outcome int
	const (
		skipped outcome = iota
		kept
		changed
		failed
	)
	outcomes := make([]outcome, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range out {
		ev := out[i]
		if len(ev.Thumbnail) == 0 && (ev.ThumbnailKey == "" || r.Load == nil) {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			image := ev.Thumbnail
			if len(image) == 0 {
				data, err := r.Load(gctx, ev.ThumbnailKey)
				if err != nil {
					logger.Warn("thumbnail unavailable", "key", ev.ThumbnailKey, "error", err)
					outcomes[i] = failed
					return nil
				}
				image = data
			}

			v, err := r.Provider.ClassifyPose(gctx, image)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("reclassify failed",
					"provider", r.Provider.Name(),
					"timestamp", ev.Timestamp,
					"error", err,
				)
				metrics.IncReclassify(true)
				outcomes[i] = failed
				return nil
			}
			metrics.IncReclassify(false)

			if v.Confidence < r.MinConfidence {
				outcomes[i] = kept
				return nil
			}

			if v.PoseName == ev.PoseName && v.QualityScore == ev.QualityScore {
				outcomes[i] = kept
			} else {
				outcomes[i] = changed
			}
			out[i].PoseName = v.PoseName
			out[i].QualityScore = v.QualityScore
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	var s Summary
	for _, o := range outcomes {
		switch o {
		case skipped:
			s.Skipped++
		case kept:
			s.Kept++
		case changed:
			s.Changed++
		case failed:
			s.Failed++
		}
	}

	logger.Info("reclassify complete",
		"provider", r.Provider.Name(),
		"changed", s.Changed,
		"kept", s.Kept,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
	return out, s, nil
}
