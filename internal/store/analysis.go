package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultCategory is used when a record is created without a category.
const DefaultCategory = "bodybuilding"

// Analysis is a stored assessment of one uploaded video.
type Analysis struct {
	ID        string  `json:"id"`
	VideoURL  string  `json:"videoUrl"`
	VideoName string  `json:"videoName"`
	Category  string  `json:"category"`
	Duration  float64 `json:"duration"`

	analysis.Result

	VisionAnalysis   json.RawMessage `json:"visionAnalysis,omitempty"`
	CoachingFeedback string          `json:"coachingFeedback,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// AnalysisRepository provides CRUD operations for analyses.
type AnalysisRepository struct {
	db *sql.DB
}

// Analyses returns the analysis repository for this store.
func (s *Store) Analyses() *AnalysisRepository {
	return &AnalysisRepository{db: s.db}
}

const analysisColumns = `id, video_url, video_name, category, duration,
	muscularity_score, symmetry_score, conditioning_score, posing_score, aesthetics_score, overall_score,
	measurements, pose_scores, detected_poses, muscle_groups, recommendations, judge_notes,
	vision_analysis, coaching_feedback, created_at, updated_at`

// jsonColumns holds the encoded form of the structured fields.
type jsonColumns struct {
	measurements, poseScores, detectedPoses   string
	muscleGroups, recommendations, judgeNotes string
	vision                                    sql.NullString
}

func encodeColumns(a *Analysis) (*jsonColumns, error) {
	var c jsonColumns
	fields := []struct {
		dst *string
		v   any
	}{
		{&c.measurements, a.Measurements},
		{&c.poseScores, nonNilMap(a.PoseScores)},
		{&c.detectedPoses, nonNilSlice(a.DetectedPoses)},
		{&c.muscleGroups, nonNilMap(a.MuscleGroups)},
		{&c.recommendations, nonNilSlice(a.Recommendations)},
		{&c.judgeNotes, nonNilSlice(a.JudgeNotes)},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.v)
		if err != nil {
			return nil, fmt.Errorf("encode analysis: %w", err)
		}
		*f.dst = string(data)
	}
	if len(a.VisionAnalysis) > 0 {
		c.vision = sql.NullString{String: string(a.VisionAnalysis), Valid: true}
	}
	return &c, nil
}

func (c *jsonColumns) decodeInto(a *Analysis) error {
	fields := []struct {
		src string
		v   any
	}{
		{c.measurements, &a.Measurements},
		{c.poseScores, &a.PoseScores},
		{c.detectedPoses, &a.DetectedPoses},
		{c.muscleGroups, &a.MuscleGroups},
		{c.recommendations, &a.Recommendations},
		{c.judgeNotes, &a.JudgeNotes},
	}
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.src), f.v); err != nil {
			return fmt.Errorf("decode analysis %s: %w", a.ID, err)
		}
	}
	if c.vision.Valid {
		a.VisionAnalysis = json.RawMessage(c.vision.String)
	}
	return nil
}

// Create inserts a new analysis. Category defaults to bodybuilding and
// the overall score is recomputed from the five categories.
func (r *AnalysisRepository) Create(a *Analysis) error {
	if a.Category == "" {
		a.Category = DefaultCategory
	}
	a.OverallScore = a.CategoryScores.Overall()

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	c, err := encodeColumns(a)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO analyses (`+analysisColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.VideoURL, a.VideoName, a.Category, a.Duration,
		a.CategoryScores.Muscularity, a.CategoryScores.Symmetry, a.CategoryScores.Conditioning,
		a.CategoryScores.Posing, a.CategoryScores.Aesthetics, a.OverallScore,
		c.measurements, c.poseScores, c.detectedPoses, c.muscleGroups, c.recommendations, c.judgeNotes,
		c.vision, a.CoachingFeedback, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*Analysis, error) {
	a := &Analysis{}
	var c jsonColumns

	err := row.Scan(
		&a.ID, &a.VideoURL, &a.VideoName, &a.Category, &a.Duration,
		&a.CategoryScores.Muscularity, &a.CategoryScores.Symmetry, &a.CategoryScores.Conditioning,
		&a.CategoryScores.Posing, &a.CategoryScores.Aesthetics, &a.OverallScore,
		&c.measurements, &c.poseScores, &c.detectedPoses, &c.muscleGroups, &c.recommendations, &c.judgeNotes,
		&c.vision, &a.CoachingFeedback, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := c.decodeInto(a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an analysis by its ID.
func (r *AnalysisRepository) GetByID(id string) (*Analysis, error) {
	row := r.db.QueryRow(`SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)

	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List retrieves all analyses, newest first.
func (r *AnalysisRepository) List() ([]*Analysis, error) {
	rows, err := r.db.Query(`SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

// Update rewrites every mutable column of an existing analysis.
func (r *AnalysisRepository) Update(a *Analysis) error {
	a.OverallScore = a.CategoryScores.Overall()
	a.UpdatedAt = time.Now()

	c, err := encodeColumns(a)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE analyses SET video_url = ?, video_name = ?, category = ?, duration = ?,
			muscularity_score = ?, symmetry_score = ?, conditioning_score = ?, posing_score = ?,
			aesthetics_score = ?, overall_score = ?, measurements = ?, pose_scores = ?,
			detected_poses = ?, muscle_groups = ?, recommendations = ?, judge_notes = ?,
			vision_analysis = ?, coaching_feedback = ?, updated_at = ?
		 WHERE id = ?`,
		a.VideoURL, a.VideoName, a.Category, a.Duration,
		a.CategoryScores.Muscularity, a.CategoryScores.Symmetry, a.CategoryScores.Conditioning,
		a.CategoryScores.Posing, a.CategoryScores.Aesthetics, a.OverallScore,
		c.measurements, c.poseScores, c.detectedPoses, c.muscleGroups, c.recommendations, c.judgeNotes,
		c.vision, a.CoachingFeedback, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an analysis from the database.
func (r *AnalysisRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func nonNilMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
