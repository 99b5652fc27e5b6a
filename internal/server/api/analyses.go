// Package api provides HTTP API handlers for the MegaFlex analysis service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/app"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/reclassify"
	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/store"
)

// msgNoData is returned when a video yields nothing the engine can score.
const msgNoData = "analysis failed, no usable pose data detected"

// Pipeline runs the operations that need the analysis engine or a provider.
type Pipeline interface {
	AnalyzeAndSave(ctx context.Context, path string, rec app.Record) (*store.Analysis, error)
	Reclassify(ctx context.Context, id, provider string) (*store.Analysis, reclassify.Summary, error)
	Coach(ctx context.Context, id, provider string) (*store.Analysis, error)
}

// AnalysisHandler handles HTTP requests for analysis resources.
type AnalysisHandler struct {
	store    *store.Store
	pipeline Pipeline
	logger   *slog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler. pipeline may be nil, in
// which case only client-scored analyses can be created.
func NewAnalysisHandler(s *store.Store, pipeline Pipeline, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{store: s, pipeline: pipeline, logger: logger}
}

// ServeHTTP routes requests under /api/analyses.
func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/analyses, /api/analyses/{id}, /api/analyses/{id}/{action}
	path := strings.TrimPrefix(r.URL.Path, "/api/analyses")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "reclassify", "coaching":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if action == "reclassify" {
			h.reclassify(w, r, id)
		} else {
			h.coaching(w, r, id)
		}
	default:
		http.NotFound(w, r)
	}
}

// Request and response types

type createAnalysisRequest struct {
	VideoURL  string  `json:"videoUrl"`
	VideoName string  `json:"videoName"`
	VideoPath string  `json:"videoPath"`
	Duration  float64 `json:"duration"`
	Category  string  `json:"category"`

	// Client-computed results. CategoryScores marks the request as scored.
	CategoryScores  *analysis.CategoryScores            `json:"categoryScores"`
	Measurements    analysis.BodyMeasurements           `json:"measurements"`
	DetectedPoses   []analysis.DetectedPoseEvent        `json:"detectedPoses"`
	MuscleGroups    map[string]analysis.DevelopmentTier `json:"muscleGroups"`
	Recommendations []analysis.Recommendation           `json:"recommendations"`
	JudgeNotes      []analysis.JudgeNote                `json:"judgeNotes"`
	VisionAnalysis  json.RawMessage                     `json:"visionAnalysis"`
}

type providerRequest struct {
	Provider string `json:"provider"`
}

type listAnalysesResponse struct {
	Analyses []*store.Analysis `json:"analyses"`
}

type reclassifyResponse struct {
	Analysis *store.Analysis    `json:"analysis"`
	Summary  reclassify.Summary `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/analyses, newest first.
func (h *AnalysisHandler) list(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.store.Analyses().List()
	if err != nil {
		h.logger.Error("list analyses", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []*store.Analysis{}
	}
	writeJSON(w, http.StatusOK, listAnalysesResponse{Analyses: analyses})
}

// get handles GET /api/analyses/{id}.
func (h *AnalysisHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.store.Analyses().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		h.logger.Error("get analysis", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// create handles POST /api/analyses. A request carrying categoryScores is
// stored as given, with pose and overall scores rebuilt server-side. A
// request carrying only videoPath is run through the pipeline.
func (h *AnalysisHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VideoName == "" {
		req.VideoName = filepath.Base(req.VideoPath)
		if req.VideoPath == "" {
			writeError(w, http.StatusBadRequest, "videoName is required")
			return
		}
	}
	if req.Duration < 0 {
		writeError(w, http.StatusBadRequest, "duration must not be negative")
		return
	}

	if req.CategoryScores != nil {
		h.createScored(w, &req)
		return
	}
	h.createFromVideo(w, r, &req)
}

func (h *AnalysisHandler) createScored(w http.ResponseWriter, req *createAnalysisRequest) {
	if !req.CategoryScores.Valid() {
		writeError(w, http.StatusBadRequest, "category scores must be between 0 and 100")
		return
	}
	for i, ev := range req.DetectedPoses {
		if i > 0 && ev.Timestamp < req.DetectedPoses[i-1].Timestamp {
			writeError(w, http.StatusBadRequest, "detectedPoses must be ordered by timestamp")
			return
		}
		if _, ok := analysis.ParsePoseName(string(ev.PoseName)); !ok {
			writeError(w, http.StatusBadRequest, "unknown pose name: "+string(ev.PoseName))
			return
		}
		if ev.QualityScore < 0 || ev.QualityScore > 100 {
			writeError(w, http.StatusBadRequest, "pose quality must be between 0 and 100")
			return
		}
	}

	record := &store.Analysis{
		ID:        uuid.NewString(),
		VideoURL:  req.VideoURL,
		VideoName: req.VideoName,
		Category:  req.Category,
		Duration:  req.Duration,
		Result: analysis.Result{
			Measurements:    req.Measurements,
			DetectedPoses:   req.DetectedPoses,
			PoseScores:      analysis.BestPoseScores(req.DetectedPoses),
			MuscleGroups:    req.MuscleGroups,
			CategoryScores:  *req.CategoryScores,
			Recommendations: req.Recommendations,
			JudgeNotes:      req.JudgeNotes,
		},
		VisionAnalysis: req.VisionAnalysis,
	}

	if err := h.store.Analyses().Create(record); err != nil {
		h.logger.Error("create analysis", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create analysis")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *AnalysisHandler) createFromVideo(w http.ResponseWriter, r *http.Request, req *createAnalysisRequest) {
	if h.pipeline == nil || req.VideoPath == "" {
		writeError(w, http.StatusUnprocessableEntity, msgNoData)
		return
	}
	if info, err := os.Stat(req.VideoPath); err != nil || info.IsDir() {
		writeError(w, http.StatusUnprocessableEntity, msgNoData)
		return
	}

	videoURL := req.VideoURL
	if videoURL == "" {
		videoURL = req.VideoPath
	}

	record, err := h.pipeline.AnalyzeAndSave(r.Context(), req.VideoPath, app.Record{
		VideoURL:  videoURL,
		VideoName: req.VideoName,
		Category:  req.Category,
	})
	if err != nil {
		if errors.Is(err, analysis.ErrNoData) || errors.Is(err, analysis.ErrDegenerateMeasurement) {
			writeError(w, http.StatusUnprocessableEntity, msgNoData)
			return
		}
		h.logger.Error("analyze video", "video", req.VideoPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze video")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// delete handles DELETE /api/analyses/{id}.
func (h *AnalysisHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Analyses().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		h.logger.Error("delete analysis", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeProvider(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return "", false
	}
	if req.Provider == "" {
		writeError(w, http.StatusBadRequest, "provider is required")
		return "", false
	}
	return req.Provider, true
}

// writeProviderError maps pipeline errors shared by reclassify and coaching.
func (h *AnalysisHandler) writeProviderError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Analysis not found")
	case errors.Is(err, reclassify.ErrProviderNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, reclassify.ErrUnsupported):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrNoProviders), errors.Is(err, app.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error(op, "id", id, "error", err)
		writeError(w, http.StatusBadGateway, op+" failed")
	}
}

// reclassify handles POST /api/analyses/{id}/reclassify.
func (h *AnalysisHandler) reclassify(w http.ResponseWriter, r *http.Request, id string) {
	provider, ok := decodeProvider(w, r)
	if !ok {
		return
	}
	if h.pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, app.ErrNoProviders.Error())
		return
	}

	record, summary, err := h.pipeline.Reclassify(r.Context(), id, provider)
	if err != nil {
		h.writeProviderError(w, "reclassify", id, err)
		return
	}
	writeJSON(w, http.StatusOK, reclassifyResponse{Analysis: record, Summary: summary})
}

// coaching handles POST /api/analyses/{id}/coaching.
func (h *AnalysisHandler) coaching(w http.ResponseWriter, r *http.Request, id string) {
	provider, ok := decodeProvider(w, r)
	if !ok {
		return
	}
	if h.pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, app.ErrNoProviders.Error())
		return
	}

	record, err := h.pipeline.Coach(r.Context(), id, provider)
	if err != nil {
		h.writeProviderError(w, "coaching", id, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
