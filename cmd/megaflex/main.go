package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/app"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/config"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/detector"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/logging"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/objectstore"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/objectstore/local"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/objectstore/s3"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/plugin"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/reclassify"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/server"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	video := flag.String("video", "", "analyze this video, print the result as JSON and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *video != "" {
		err = analyzeOnce(ctx, cfg, logger, *video)
	} else {
		err = serve(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("megaflex failed", "error", err)
		os.Exit(1)
	}
}

// analyzeOnce runs the pipeline on one video without persistence.
func analyzeOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) error {
	det, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	a := app.New(app.Config{
		Detector:       det,
		Engine:         engine,
		SampleInterval: cfg.Analysis.SampleInterval,
		SettleDelay:    cfg.Analysis.SettleDelay,
		ThumbnailWidth: cfg.Analysis.ThumbnailWidth,
		Logger:         logger,
	})
	defer a.Close()

	run, err := a.AnalyzeVideo(ctx, path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	det, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	providers, err := newProviders(cfg, logger)
	if err != nil {
		return err
	}

	hub := server.NewProgressHub(logger)
	a := app.New(app.Config{
		Detector:                det,
		Engine:                  engine,
		Store:                   st,
		Objects:                 objects,
		Providers:               providers,
		SampleInterval:          cfg.Analysis.SampleInterval,
		SettleDelay:             cfg.Analysis.SettleDelay,
		ThumbnailWidth:          cfg.Analysis.ThumbnailWidth,
		ReclassifyConcurrency:   cfg.Reclassify.Concurrency,
		ReclassifyMinConfidence: cfg.Reclassify.MinConfidence,
		OnProgress:              hub.Publish,
		Logger:                  logger,
	})
	defer a.Close()

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		App:       a,
		Hub:       hub,
		Logger:    logger,
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func newDetector(cfg *config.Config, logger *slog.Logger) (detector.Detector, error) {
	det, err := detector.NewMediaPipeDetector(detector.Config{
		ScriptPath:    cfg.Detector.ScriptPath,
		PythonPath:    cfg.Detector.PythonPath,
		MinConfidence: cfg.Detector.MinConfidence,
		IdleTimeout:   cfg.Detector.IdleTimeout,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("pose detector: %w", err)
	}
	return det, nil
}

func newEngine(cfg *config.Config, logger *slog.Logger) (*analysis.Engine, error) {
	policy, ok := analysis.ParseDedupPolicy(cfg.Analysis.DedupPolicy)
	if !ok {
		return nil, fmt.Errorf("unknown dedup policy %q", cfg.Analysis.DedupPolicy)
	}
	return analysis.NewEngine(analysis.Config{
		DedupPolicy:   policy,
		DedupGap:      cfg.Analysis.DedupGap,
		BaselineSeed:  cfg.Analysis.BaselineSeed,
		FixedBaseline: cfg.Analysis.FixedBaseline,
		Logger:        logger,
	}), nil
}

func newObjectStore(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
	switch cfg.Storage.Thumbnails {
	case "s3":
		st, err := s3.New(ctx, s3.Config{
			Region: cfg.Storage.S3.Region,
			Bucket: cfg.Storage.S3.Bucket,
			Prefix: cfg.Storage.S3.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("thumbnail store: %w", err)
		}
		return st, nil
	default:
		st, err := local.New(cfg.Storage.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("thumbnail store: %w", err)
		}
		return st, nil
	}
}

// newProviders registers every discovered plugin plus OpenAI when a key is set.
func newProviders(cfg *config.Config, logger *slog.Logger) (*reclassify.Registry, error) {
	registry := reclassify.NewRegistry()

	manager := plugin.NewManager(cfg.Reclassify.PluginDir, logger)
	if err := manager.Discover(); err != nil {
		logger.Warn("plugin discovery failed", "dir", cfg.Reclassify.PluginDir, "error", err)
	}
	n := reclassify.RegisterPlugins(registry, manager, plugin.NewExecutor(cfg.Reclassify.Timeout))

	if cfg.Reclassify.OpenAI.APIKey != "" {
		client, err := reclassify.NewOpenAI(reclassify.OpenAIConfig{
			APIKey:  cfg.Reclassify.OpenAI.APIKey,
			Model:   cfg.Reclassify.OpenAI.Model,
			BaseURL: cfg.Reclassify.OpenAI.BaseURL,
			Timeout: cfg.Reclassify.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		registry.Register(client)
	}

	logger.Info("reclassify providers ready", "plugins", n, "providers", registry.Names())
	return registry, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.megaflex/web.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".megaflex", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
