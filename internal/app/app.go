// Package app wires video sampling, pose detection, the analysis engine and
// persistence into the operations the HTTP server and CLI expose.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/capture"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/detector"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/metrics"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/objectstore"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/reclassify"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/store"
)

var (
	// ErrNoStore is returned by operations that need persistence when none is configured.
	ErrNoStore = errors.New("no analysis store configured")

	// ErrNoProviders is returned when re-classification or coaching is requested
	// without a provider registry.
	ErrNoProviders = errors.New("no reclassify providers configured")
)

// Config holds the collaborators and tuning of an App.
type Config struct {
	Detector detector.Detector
	Engine   *analysis.Engine

	// Store persists analyses. Optional for one-shot CLI runs.
	Store *store.Store

	// Objects stores pose thumbnails. When nil, thumbnails stay inline.
	Objects objectstore.Store

	// Providers resolves re-classification and coaching providers.
	Providers *reclassify.Registry

	// OpenSource opens a video for sampling (default: capture.NewVideoFile).
	OpenSource func(path string) capture.Source

	// SampleInterval is the spacing of sampled timestamps in seconds (default: 1.0).
	SampleInterval float64

	// SettleDelay is waited after each seek before decoding.
	SettleDelay time.Duration

	// ThumbnailWidth is the pixel width of stored snapshots (default: 320).
	ThumbnailWidth int

	// ReclassifyConcurrency bounds parallel provider calls.
	ReclassifyConcurrency int

	// ReclassifyMinConfidence drops provider verdicts below this confidence.
	ReclassifyMinConfidence int

	// OnProgress receives pipeline progress. It must not block.
	OnProgress func(Progress)

	Logger *slog.Logger
}

// App runs analyses. It is safe for concurrent use; each analysis owns its
// own source and decode buffer, while detector calls are serialized.
type App struct {
	config Config
	logger *slog.Logger

	detectMu sync.Mutex
}

// New creates an App, filling defaults for unset options.
func New(config Config) *App {
	if config.Engine == nil {
		config.Engine = analysis.NewEngine(analysis.DefaultConfig())
	}
	if config.OpenSource == nil {
		config.OpenSource = capture.NewVideoFile
	}
	if config.SampleInterval <= 0 {
		config.SampleInterval = capture.DefaultSampleInterval
	}
	if config.ThumbnailWidth <= 0 {
		config.ThumbnailWidth = capture.DefaultThumbnailWidth
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		config: config,
		logger: logger,
	}
}

// Close releases the detector.
func (a *App) Close() error {
	if a.config.Detector == nil {
		return nil
	}
	return a.config.Detector.Close()
}

// Store returns the configured analysis store, if any.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Objects returns the configured thumbnail store, if any.
func (a *App) Objects() objectstore.Store {
	return a.config.Objects
}

// Providers returns the configured provider registry, if any.
func (a *App) Providers() *reclassify.Registry {
	return a.config.Providers
}

// Run is the outcome of analysing one video.
type Run struct {
	ID       string           `json:"id"`
	Video    string           `json:"video"`
	Duration float64          `json:"duration"`
	Sampled  int              `json:"sampled"`
	Dropped  int              `json:"dropped"`
	Result   *analysis.Result `json:"result"`
}

// AnalyzeVideo samples the video at path, runs the engine and, when an
// object store is configured, moves thumbnails into it.
func (a *App) AnalyzeVideo(ctx context.Context, path string) (*Run, error) {
	if a.config.Detector == nil {
		return nil, errors.New("analyze: no detector configured")
	}

	run := &Run{ID: uuid.NewString(), Video: path}
	start := time.Now()
	metrics.IncAnalysisStarted()

	result, err := a.analyze(ctx, run)
	metrics.ObserveAnalysisDuration(time.Since(start))
	if err != nil {
		metrics.IncAnalysisFailed()
		a.publish(Progress{JobID: run.ID, Video: path, Stage: StageFailed, Error: err.Error()})
		a.logger.Warn("analysis failed", "id", run.ID, "video", path, "error", err)
		return nil, err
	}

	run.Result = result
	metrics.IncAnalysisCompleted()
	metrics.AddPosesDetected(len(result.DetectedPoses))
	a.publish(Progress{JobID: run.ID, Video: path, Stage: StageDone, Frame: run.Sampled, Total: run.Sampled + run.Dropped})
	a.logger.Info("analysis complete",
		"id", run.ID,
		"video", path,
		"frames", run.Sampled,
		"dropped", run.Dropped,
		"poses", len(result.DetectedPoses),
		"overall", result.OverallScore,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return run, nil
}

func (a *App) analyze(ctx context.Context, run *Run) (*analysis.Result, error) {
	frames, err := a.sampleVideo(ctx, run)
	if err != nil {
		return nil, err
	}

	a.publish(Progress{JobID: run.ID, Video: run.Video, Stage: StageAnalyzing, Frame: run.Sampled, Total: run.Sampled + run.Dropped})

	result, err := a.config.Engine.Analyze(frames)
	if err != nil {
		return nil, err
	}

	if a.config.Objects != nil {
		if err := a.storeThumbnails(ctx, run.ID, result.DetectedPoses); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ThumbnailKey is the object key for the i-th pose snapshot of an analysis.
func ThumbnailKey(analysisID string, i int) string {
	return fmt.Sprintf("thumbnails/%s/%d.jpg", analysisID, i)
}

// storeThumbnails uploads inline snapshots and replaces them with keys.
// On failure the objects already uploaded for this run are removed.
func (a *App) storeThumbnails(ctx context.Context, id string, events []analysis.DetectedPoseEvent) error {
	var saved []string
	for i := range events {
		ev := &events[i]
		if len(ev.Thumbnail) == 0 {
			continue
		}
		key := ThumbnailKey(id, i)
		if _, err := a.config.Objects.Save(ctx, key, "image/jpeg", bytes.NewReader(ev.Thumbnail)); err != nil {
			a.removeThumbnails(saved)
			return fmt.Errorf("store thumbnail %s: %w", key, err)
		}
		saved = append(saved, key)
		ev.ThumbnailKey = key
		ev.Thumbnail = nil
	}
	return nil
}

func (a *App) removeThumbnails(keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, key := range keys {
		if err := a.config.Objects.Delete(ctx, key); err != nil {
			a.logger.Warn("remove thumbnail", "key", key, "error", err)
		}
	}
}

// Record describes the video an analysis is saved under.
type Record struct {
	VideoURL  string
	VideoName string
	Category  string
}

// AnalyzeAndSave runs AnalyzeVideo and persists the result under the run ID.
func (a *App) AnalyzeAndSave(ctx context.Context, path string, rec Record) (*store.Analysis, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}

	run, err := a.AnalyzeVideo(ctx, path)
	if err != nil {
		return nil, err
	}

	a.publish(Progress{JobID: run.ID, Video: path, Stage: StageSaving})

	record := &store.Analysis{
		ID:        run.ID,
		VideoURL:  rec.VideoURL,
		VideoName: rec.VideoName,
		Category:  rec.Category,
		Duration:  run.Duration,
		Result:    *run.Result,
	}
	if err := a.config.Store.Analyses().Create(record); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	return record, nil
}

func (a *App) provider(name string) (reclassify.Provider, error) {
	if a.config.Providers == nil {
		return nil, ErrNoProviders
	}
	return a.config.Providers.Get(name)
}

// Reclassify re-judges a stored analysis's pose snapshots with the named
// provider and saves the updated pose list, posing score and overall score.
func (a *App) Reclassify(ctx context.Context, id, providerName string) (*store.Analysis, reclassify.Summary, error) {
	if a.config.Store == nil {
		return nil, reclassify.Summary{}, ErrNoStore
	}
	p, err := a.provider(providerName)
	if err != nil {
		return nil, reclassify.Summary{}, err
	}

	repo := a.config.Store.Analyses()
	record, err := repo.GetByID(id)
	if err != nil {
		return nil, reclassify.Summary{}, err
	}

	r := &reclassify.Reclassifier{
		Provider:      p,
		Load:          a.loadThumbnail,
		Concurrency:   a.config.ReclassifyConcurrency,
		MinConfidence: a.config.ReclassifyMinConfidence,
		Logger:        a.logger,
	}
	events, summary, err := r.Run(ctx, record.DetectedPoses)
	if err != nil {
		return nil, summary, fmt.Errorf("reclassify %s: %w", id, err)
	}

	analysis.Rescore(&record.Result, events)
	if err := repo.Update(record); err != nil {
		return nil, summary, fmt.Errorf("save reclassified analysis: %w", err)
	}
	return record, summary, nil
}

func (a *App) loadThumbnail(ctx context.Context, key string) ([]byte, error) {
	if a.config.Objects == nil {
		return nil, objectstore.ErrNotFound
	}
	return objectstore.ReadAll(ctx, a.config.Objects, key)
}

// Coach asks the named provider for coaching feedback on a stored analysis
// and saves the text on the record.
func (a *App) Coach(ctx context.Context, id, providerName string) (*store.Analysis, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	p, err := a.provider(providerName)
	if err != nil {
		return nil, err
	}

	repo := a.config.Store.Analyses()
	record, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	text, err := p.GenerateText(ctx, reclassify.BuildCoachingPrompt(&record.Result))
	if err != nil {
		return nil, fmt.Errorf("coaching from %s: %w", p.Name(), err)
	}

	record.CoachingFeedback = text
	if err := repo.Update(record); err != nil {
		return nil, fmt.Errorf("save coaching: %w", err)
	}
	return record, nil
}
