package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/pose"
)

func sampleAnalysis(id string) *Analysis {
	fat := 8.5
	raw := pose.FrontDoubleBicepsSkeleton()
	return &Analysis{
		ID:        id,
		VideoURL:  "/uploads/" + id + ".mp4",
		VideoName: id + ".mp4",
		Duration:  24,
		Result: analysis.Result{
			Measurements: analysis.BodyMeasurements{
				ShoulderWidth:     20,
				WaistWidth:        15,
				VTaperRatio:       1.33,
				UpperLowerRatio:   1.1,
				LeftRightSymmetry: 97,
				BodyFatPercentage: &fat,
			},
			DetectedPoses: []analysis.DetectedPoseEvent{
				{PoseName: analysis.FrontDoubleBiceps, Timestamp: 3, QualityScore: 88, ThumbnailKey: "thumbnails/" + id + "/0.jpg", RawJoints: &raw},
			},
			PoseScores:   map[analysis.PoseName]int{analysis.FrontDoubleBiceps: 88},
			MuscleGroups: map[string]analysis.DevelopmentTier{"shoulders": analysis.DevelopmentMedium},
			CategoryScores: analysis.CategoryScores{
				Muscularity: 70, Symmetry: 97, Conditioning: 90, Posing: 80, Aesthetics: 85,
			},
			Recommendations: []analysis.Recommendation{
				{Type: analysis.TierStrength, Title: "Excellent symmetry", Description: "Keep it up."},
			},
			JudgeNotes: []analysis.JudgeNote{{Type: analysis.TierAttention, Text: "Hold poses longer."}},
		},
	}
}

func TestAnalysisRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Analyses()

	a := sampleAnalysis("a1")
	a.OverallScore = 3

	if err := repo.Create(a); err != nil {
		t.Fatalf("failed to create analysis: %v", err)
	}

	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		t.Error("timestamps should be set after create")
	}
	if a.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", a.Category, DefaultCategory)
	}
	if a.OverallScore != 84 {
		t.Errorf("OverallScore = %d, want recomputed 84", a.OverallScore)
	}

	got, err := repo.GetByID("a1")
	if err != nil {
		t.Fatalf("failed to get analysis: %v", err)
	}

	if got.VideoName != "a1.mp4" || got.VideoURL != "/uploads/a1.mp4" {
		t.Errorf("unexpected video fields: %+v", got)
	}
	if got.CategoryScores != a.CategoryScores {
		t.Errorf("CategoryScores = %+v, want %+v", got.CategoryScores, a.CategoryScores)
	}
	if got.OverallScore != 84 {
		t.Errorf("OverallScore = %d, want 84", got.OverallScore)
	}
	if got.Measurements.VTaperRatio != 1.33 {
		t.Errorf("VTaperRatio = %v, want 1.33", got.Measurements.VTaperRatio)
	}
	if got.Measurements.BodyFatPercentage == nil || *got.Measurements.BodyFatPercentage != 8.5 {
		t.Errorf("BodyFatPercentage = %v, want 8.5", got.Measurements.BodyFatPercentage)
	}
	if len(got.DetectedPoses) != 1 {
		t.Fatalf("expected 1 detected pose, got %d", len(got.DetectedPoses))
	}
	ev := got.DetectedPoses[0]
	if ev.PoseName != analysis.FrontDoubleBiceps || ev.QualityScore != 88 || ev.ThumbnailKey != "thumbnails/a1/0.jpg" {
		t.Errorf("unexpected pose event: %+v", ev)
	}
	if ev.RawJoints == nil || *ev.RawJoints != pose.FrontDoubleBicepsSkeleton() {
		t.Error("raw joints not preserved")
	}
	if got.PoseScores[analysis.FrontDoubleBiceps] != 88 {
		t.Errorf("PoseScores = %v", got.PoseScores)
	}
	if got.MuscleGroups["shoulders"] != analysis.DevelopmentMedium {
		t.Errorf("MuscleGroups = %v", got.MuscleGroups)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].Type != analysis.TierStrength {
		t.Errorf("Recommendations = %+v", got.Recommendations)
	}
	if len(got.JudgeNotes) != 1 || got.JudgeNotes[0].Text != "Hold poses longer." {
		t.Errorf("JudgeNotes = %+v", got.JudgeNotes)
	}
	if got.VisionAnalysis != nil {
		t.Errorf("VisionAnalysis = %s, want nil", got.VisionAnalysis)
	}
}

func TestAnalysisRepository_CreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	repo := s.Analyses()

	if err := repo.Create(sampleAnalysis("dup")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.Create(sampleAnalysis("dup")); err == nil {
		t.Error("expected error creating duplicate ID")
	}
}

func TestAnalysisRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Analyses().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalysisRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Analyses()

	t.Run("empty", func(t *testing.T) {
		list, err := repo.List()
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected empty list, got %d", len(list))
		}
	})

	t.Run("newest first", func(t *testing.T) {
		for _, id := range []string{"first", "second", "third"} {
			if err := repo.Create(sampleAnalysis(id)); err != nil {
				t.Fatalf("create %s: %v", id, err)
			}
			time.Sleep(5 * time.Millisecond)
		}

		list, err := repo.List()
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 analyses, got %d", len(list))
		}
		want := []string{"third", "second", "first"}
		for i, a := range list {
			if a.ID != want[i] {
				t.Errorf("list[%d] = %q, want %q", i, a.ID, want[i])
			}
		}
	})
}

func TestAnalysisRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Analyses()

	a := sampleAnalysis("u1")
	if err := repo.Create(a); err != nil {
		t.Fatalf("create: %v", err)
	}
	created := a.UpdatedAt

	time.Sleep(5 * time.Millisecond)

	a.CategoryScores.Posing = 100
	a.CoachingFeedback = "Bring the waist in."
	a.VisionAnalysis = json.RawMessage(`{"poses":1}`)
	if err := repo.Update(a); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID("u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CategoryScores.Posing != 100 {
		t.Errorf("Posing = %d, want 100", got.CategoryScores.Posing)
	}
	if got.OverallScore != 88 {
		t.Errorf("OverallScore = %d, want 88", got.OverallScore)
	}
	if got.CoachingFeedback != "Bring the waist in." {
		t.Errorf("CoachingFeedback = %q", got.CoachingFeedback)
	}
	if string(got.VisionAnalysis) != `{"poses":1}` {
		t.Errorf("VisionAnalysis = %s", got.VisionAnalysis)
	}
	if !got.UpdatedAt.After(created) {
		t.Error("UpdatedAt should advance on update")
	}
}

func TestAnalysisRepository_Update_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Analyses().Update(sampleAnalysis("ghost"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalysisRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Analyses()

	if err := repo.Create(sampleAnalysis("d1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete("d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID("d1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete("d1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestAnalysisRepository_NilCollectionsStoredEmpty(t *testing.T) {
	s := newTestStore(t)
	repo := s.Analyses()

	a := &Analysis{ID: "bare", VideoName: "bare.mp4"}
	if err := repo.Create(a); err != nil {
		t.Fatalf("create: %v", err)
	}

	var poses, groups string
	err := s.DB().QueryRow(`SELECT detected_poses, muscle_groups FROM analyses WHERE id = ?`, "bare").Scan(&poses, &groups)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if poses != "[]" || groups != "{}" {
		t.Errorf("got detected_poses=%s muscle_groups=%s", poses, groups)
	}
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &Store{db: db}, mock
}

func TestAnalysisRepository_DatabaseErrors(t *testing.T) {
	boom := errors.New("disk I/O error")

	t.Run("create propagates exec error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO analyses").WillReturnError(boom)

		if err := s.Analyses().Create(sampleAnalysis("x")); !errors.Is(err, boom) {
			t.Errorf("expected exec error, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("ExpectationsWereMet: %v", err)
		}
	})

	t.Run("get propagates query error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id").WithArgs("x").WillReturnError(boom)

		if _, err := s.Analyses().GetByID("x"); !errors.Is(err, boom) {
			t.Errorf("expected query error, got %v", err)
		}
	})

	t.Run("list propagates query error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT (.+) FROM analyses ORDER BY created_at DESC").WillReturnError(boom)

		if _, err := s.Analyses().List(); !errors.Is(err, boom) {
			t.Errorf("expected query error, got %v", err)
		}
	})

	t.Run("get rejects corrupt json", func(t *testing.T) {
		s, mock := newMockStore(t)
		now := time.Now()
		rows := sqlmock.NewRows([]string{
			"id", "video_url", "video_name", "category", "duration",
			"muscularity_score", "symmetry_score", "conditioning_score", "posing_score", "aesthetics_score", "overall_score",
			"measurements", "pose_scores", "detected_poses", "muscle_groups", "recommendations", "judge_notes",
			"vision_analysis", "coaching_feedback", "created_at", "updated_at",
		}).AddRow(
			"x", "", "x.mp4", "bodybuilding", 10.0,
			70, 80, 80, 80, 80, 78,
			"{not json", "{}", "[]", "{}", "[]", "[]",
			nil, "", now, now,
		)
		mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id").WithArgs("x").WillReturnRows(rows)

		if _, err := s.Analyses().GetByID("x"); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("update with no rows affected", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("UPDATE analyses SET").WillReturnResult(sqlmock.NewResult(0, 0))

		if err := s.Analyses().Update(sampleAnalysis("x")); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete propagates exec error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM analyses").WithArgs("x").WillReturnError(boom)

		if err := s.Analyses().Delete("x"); !errors.Is(err, boom) {
			t.Errorf("expected exec error, got %v", err)
		}
	})
}
