package reclassify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
)

func TestReclassifier_Run(t *testing.T) {
	provider := &fakeProvider{
		name: "fake",
		verdicts: map[string]Verdict{
			"img-a": {PoseName: analysis.FrontLatSpread, Confidence: 90, QualityScore: 81},
			"img-b": {PoseName: analysis.SideChest, Confidence: 90, QualityScore: 70},
			"img-d": {PoseName: analysis.MostMuscular, Confidence: 20, QualityScore: 99},
		},
		errs: map[string]error{"img-c": errors.New("model overloaded")},
	}

	stored := map[string][]byte{"thumbnails/x/1.jpg": []byte("img-b")}
	load := func(ctx context.Context, key string) ([]byte, error) {
		data, ok := stored[key]
		if !ok {
			return nil, errors.New("missing")
		}
		return data, nil
	}

	events := []analysis.DetectedPoseEvent{
		{PoseName: analysis.FrontDoubleBiceps, Timestamp: 0, QualityScore: 80, Thumbnail: []byte("img-a")},
		{PoseName: analysis.SideChest, Timestamp: 3, QualityScore: 70, ThumbnailKey: "thumbnails/x/1.jpg"},
		{PoseName: analysis.BackLatSpread, Timestamp: 6, QualityScore: 75, Thumbnail: []byte("img-c")},
		{PoseName: analysis.AbsAndThighs, Timestamp: 9, QualityScore: 77},
		{PoseName: analysis.SideTriceps, Timestamp: 12, QualityScore: 78, Thumbnail: []byte("img-d")},
		{PoseName: analysis.BackDoubleBiceps, Timestamp: 15, QualityScore: 79, ThumbnailKey: "thumbnails/x/gone.jpg"},
	}

	r := &Reclassifier{Provider: provider, Load: load, Concurrency: 2, MinConfidence: 50}
	out, summary, err := r.Run(context.Background(), events)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []struct {
		name    analysis.PoseName
		quality int
	}{
		{analysis.FrontLatSpread, 81},
		{analysis.SideChest, 70},
		{analysis.BackLatSpread, 75},
		{analysis.AbsAndThighs, 77},
		{analysis.SideTriceps, 78},
		{analysis.BackDoubleBiceps, 79},
	}
	if len(out) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(out))
	}
	for i, w := range want {
		if out[i].PoseName != w.name || out[i].QualityScore != w.quality {
			t.Errorf("event %d = %s/%d, want %s/%d", i, out[i].PoseName, out[i].QualityScore, w.name, w.quality)
		}
		if out[i].Timestamp != events[i].Timestamp {
			t.Errorf("event %d timestamp changed", i)
		}
	}

	wantSummary := Summary{Changed: 1, Kept: 2, Skipped: 1, Failed: 2}
	if summary != wantSummary {
		t.Errorf("summary = %+v, want %+v", summary, wantSummary)
	}

	if events[0].PoseName != analysis.FrontDoubleBiceps {
		t.Error("input events must not be modified")
	}
}

func TestReclassify_Defaults(t *testing.T) {
	provider := &fakeProvider{
		name:     "fake",
		verdicts: map[string]Verdict{"img": {PoseName: analysis.MostMuscular, Confidence: 10, QualityScore: 60}},
	}

	events := []analysis.DetectedPoseEvent{
		{PoseName: analysis.GeneralTransitionPose, QualityScore: 80, Thumbnail: []byte("img")},
	}

	out, err := Reclassify(context.Background(), provider, events, nil)
	if err != nil {
		t.Fatalf("Reclassify() error = %v", err)
	}
	if out[0].PoseName != analysis.MostMuscular || out[0].QualityScore != 60 {
		t.Errorf("unexpected event %+v", out[0])
	}
}

func TestReclassify_Empty(t *testing.T) {
	out, err := Reclassify(context.Background(), &fakeProvider{name: "fake"}, nil, nil)
	if err != nil {
		t.Fatalf("Reclassify() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no events, got %d", len(out))
	}
}

func TestReclassify_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []analysis.DetectedPoseEvent{
		{PoseName: analysis.SideChest, Thumbnail: []byte("img")},
	}

	_, err := Reclassify(ctx, &fakeProvider{name: "fake"}, events, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuildCoachingPrompt(t *testing.T) {
	r := &analysis.Result{
		Measurements: analysis.BodyMeasurements{ShoulderWidth: 20, WaistWidth: 15, VTaperRatio: 1.33, LeftRightSymmetry: 97},
		PoseScores: map[analysis.PoseName]int{
			analysis.SideChest:         82,
			analysis.FrontDoubleBiceps: 88,
		},
		MuscleGroups:   map[string]analysis.DevelopmentTier{"calves": analysis.DevelopmentLow},
		CategoryScores: analysis.CategoryScores{Muscularity: 70, Symmetry: 97, Conditioning: 90, Posing: 80, Aesthetics: 85},
		OverallScore:   84,
	}

	prompt := BuildCoachingPrompt(r)

	for _, want := range []string{
		"- Overall: 84",
		"- Symmetry: 97",
		"V-taper 1.33",
		"- front-double-biceps: 88",
		"calves=low",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if strings.Index(prompt, "front-double-biceps") > strings.Index(prompt, "side-chest") {
		t.Error("poses should be listed in sorted order")
	}

	empty := BuildCoachingPrompt(&analysis.Result{})
	if !strings.Contains(empty, "Detected poses: none") {
		t.Errorf("expected empty pose note:\n%s", empty)
	}
}
