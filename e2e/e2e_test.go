package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/app"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/capture"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/detector"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/objectstore/local"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/plugin"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/reclassify"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/server"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/store"
)

const judgeScript = `#!/bin/sh
INPUT=$(cat)
case "$INPUT" in
  *'"action":"classify-pose"'*) echo '{"success":true,"data":{"poseName":"most-muscular","confidence":90,"quality":88}}' ;;
  *) echo '{"success":true,"data":{"text":"Bring the elbows forward in the side chest."}}' ;;
esac
`

type harness struct {
	ts    *httptest.Server
	store *store.Store
	video string
}

// newHarness builds the full service: sqlite store, local thumbnails, a
// shell plugin provider, and a mock video whose frames walk the eight
// mandatory poses.
func newHarness(t *testing.T) *harness {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	objects, err := local.New(filepath.Join(tmpDir, "objects"))
	if err != nil {
		t.Fatalf("local.New() error = %v", err)
	}

	pluginDir := filepath.Join(tmpDir, "plugins", "judge")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name":"judge","version":"1.0.0","executable":"run.sh","actions":["classify-pose","generate-text"]}`
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "run.sh"), []byte(judgeScript), 0755); err != nil {
		t.Fatal(err)
	}

	manager := plugin.NewManager(filepath.Join(tmpDir, "plugins"), nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	registry := reclassify.NewRegistry()
	if n := reclassify.RegisterPlugins(registry, manager, plugin.NewExecutor(10*time.Second)); n != 1 {
		t.Fatalf("RegisterPlugins() = %d, want 1", n)
	}

	presets := []pose.Skeleton{
		pose.FrontDoubleBicepsSkeleton(),
		pose.FrontLatSpreadSkeleton(),
		pose.SideChestSkeleton(),
		pose.BackDoubleBicepsSkeleton(),
		pose.BackLatSpreadSkeleton(),
		pose.SideTricepsSkeleton(),
		pose.AbsAndThighsSkeleton(),
		pose.MostMuscularSkeleton(),
	}
	seq := make([]*pose.Skeleton, len(presets))
	for i := range presets {
		seq[i] = &presets[i]
	}
	det := detector.NewMockDetector()
	det.SetSequence(seq)

	engineCfg := analysis.DefaultConfig()
	engineCfg.FixedBaseline = 80

	video := filepath.Join(tmpDir, "routine.mp4")
	if err := os.WriteFile(video, []byte("placeholder"), 0644); err != nil {
		t.Fatal(err)
	}

	hub := server.NewProgressHub(nil)
	a := app.New(app.Config{
		Detector:       det,
		Engine:         analysis.NewEngine(engineCfg),
		Store:          s,
		Objects:        objects,
		Providers:      registry,
		OpenSource:     func(string) capture.Source { return capture.NewMockSource(24) },
		SampleInterval: 3,
		OnProgress:     hub.Publish,
	})

	ts := httptest.NewServer(server.New(server.Config{App: a, Hub: hub}))
	t.Cleanup(ts.Close)

	return &harness{ts: ts, store: s, video: video}
}

func (h *harness) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := h.ts.Client().Post(h.ts.URL+path, "application/json", strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestE2E_AnalyzeAndCoach(t *testing.T) {
	h := newHarness(t)

	var created store.Analysis
	t.Run("AnalyzeVideo", func(t *testing.T) {
		resp := h.post(t, "/api/analyses", map[string]string{"videoPath": h.video, "category": "classic-physique"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("decode error = %v", err)
		}

		if len(created.DetectedPoses) != 8 {
			t.Fatalf("expected 8 detected poses, got %d", len(created.DetectedPoses))
		}
		want := analysis.CategoryScores{Muscularity: 60, Symmetry: 100, Conditioning: 90, Posing: 95, Aesthetics: 87}
		if created.CategoryScores != want || created.OverallScore != 86 {
			t.Errorf("scores = %+v overall %d", created.CategoryScores, created.OverallScore)
		}
		if created.Category != "classic-physique" || created.VideoName != "routine.mp4" {
			t.Errorf("unexpected record metadata %+v", created)
		}
	})

	t.Run("Coaching", func(t *testing.T) {
		resp := h.post(t, "/api/analyses/"+created.ID+"/coaching", map[string]string{"provider": "judge"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		stored, err := h.store.Analyses().GetByID(created.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if stored.CoachingFeedback != "Bring the elbows forward in the side chest." {
			t.Errorf("CoachingFeedback = %q", stored.CoachingFeedback)
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		resp := h.post(t, "/api/analyses/"+created.ID+"/coaching", map[string]string{"provider": "nobody"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := h.ts.Client().Get(h.ts.URL + "/api/metrics")
		if err != nil {
			t.Fatalf("GET /api/metrics error = %v", err)
		}
		defer resp.Body.Close()

		var buf strings.Builder
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "megaflex_analysis_completed_total") {
			t.Error("metrics missing completed counter")
		}
	})
}

func TestE2E_ReclassifyClientScored(t *testing.T) {
	h := newHarness(t)

	body := map[string]any{
		"videoName": "upload.mp4",
		"duration":  12,
		"categoryScores": map[string]int{
			"muscularity": 70, "symmetry": 90, "conditioning": 85, "posing": 60, "aesthetics": 80,
		},
		"detectedPoses": []map[string]any{
			{"poseName": "side-chest", "timestamp": 0, "qualityScore": 70, "thumbnail": []byte{0xff, 0xd8, 0xff}},
			{"poseName": "front-double-biceps", "timestamp": 4, "qualityScore": 80},
		},
	}

	resp := h.post(t, "/api/analyses", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var created store.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	resp = h.post(t, "/api/analyses/"+created.ID+"/reclassify", map[string]string{"provider": "judge"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reclassify status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var out struct {
		Analysis store.Analysis     `json:"analysis"`
		Summary  reclassify.Summary `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	if out.Summary != (reclassify.Summary{Changed: 1, Skipped: 1}) {
		t.Errorf("summary = %+v", out.Summary)
	}

	stored, err := h.store.Analyses().GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.DetectedPoses[0].PoseName != analysis.MostMuscular || stored.DetectedPoses[0].QualityScore != 88 {
		t.Errorf("first pose not relabelled: %+v", stored.DetectedPoses[0])
	}
	if stored.DetectedPoses[1].PoseName != analysis.FrontDoubleBiceps {
		t.Errorf("second pose should be unchanged: %+v", stored.DetectedPoses[1])
	}
	if stored.PoseScores[analysis.MostMuscular] != 88 {
		t.Errorf("pose scores not rebuilt: %v", stored.PoseScores)
	}
	if stored.CategoryScores.Posing != analysis.PosingScore(stored.DetectedPoses) {
		t.Errorf("posing score %d not recomputed", stored.CategoryScores.Posing)
	}
	if stored.OverallScore != stored.CategoryScores.Overall() {
		t.Errorf("overall %d does not match categories %+v", stored.OverallScore, stored.CategoryScores)
	}
}
