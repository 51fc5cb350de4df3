// Package web serves matchup views, projection changes, records, and manual
// refresh triggers as JSON.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/omarshaarawi/commander/internal/models"
	"github.com/omarshaarawi/commander/internal/service"
)

// Commands is what the HTTP API can ask of the service.
type Commands interface {
	Matchups(ctx context.Context, profile string, week int, mode models.Mode) ([]models.MatchupView, error)
	Changes(ctx context.Context, limit int) ([]models.ProjectionChange, error)
	Records(ctx context.Context) ([]models.RecordBoard, error)
	RefreshAll(ctx context.Context) service.StepResult
	RefreshScores(ctx context.Context) error
}

type Handler struct {
	commands Commands
}

func NewHandler(commands Commands) *Handler {
	return &Handler{commands: commands}
}

// Router registers every route. Fixed paths come before the profile
// catch-alls so they are matched first.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/update/all", h.UpdateAll).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/update/scores", h.UpdateScores).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/changes", h.Changes).Methods(http.MethodGet)
	r.HandleFunc("/records", h.Records).Methods(http.MethodGet)
	r.HandleFunc("/{profile}", h.Matchups).Methods(http.MethodGet)
	r.HandleFunc("/{profile}/", h.Matchups).Methods(http.MethodGet)
	r.HandleFunc("/{profile}/{mode}", h.Matchups).Methods(http.MethodGet)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateAll answers 500 when any step failed, still listing every step.
func (h *Handler) UpdateAll(w http.ResponseWriter, r *http.Request) {
	result := h.commands.RefreshAll(r.Context())
	status := http.StatusOK
	for _, outcome := range result {
		if outcome != "ok" {
			status = http.StatusInternalServerError
			break
		}
	}
	writeJSON(w, status, result)
}

func (h *Handler) UpdateScores(w http.ResponseWriter, r *http.Request) {
	if err := h.commands.RefreshScores(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Changes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	changes, err := h.commands.Changes(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if changes == nil {
		changes = []models.ProjectionChange{}
	}
	writeJSON(w, http.StatusOK, changes)
}

type recordsResponse struct {
	Boards []models.RecordBoard `json:"boards"`
	Error  string               `json:"error,omitempty"`
}

// Records answers with whatever boards could be built, and the failures
// that left gaps in them.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	boards, err := h.commands.Records(r.Context())
	resp := recordsResponse{Boards: boards}
	if resp.Boards == nil {
		resp.Boards = []models.RecordBoard{}
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Matchups(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	week := 0
	if raw := r.URL.Query().Get("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "week must be a positive integer"})
			return
		}
		week = n
	}

	views, err := h.commands.Matchups(r.Context(), vars["profile"], week, models.ParseMode(vars["mode"]))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, views)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
