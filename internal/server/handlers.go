package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"repohealth/internal/engine"
	"repohealth/internal/progress"
	"repohealth/internal/report"
	"repohealth/internal/reportstore"
	"repohealth/internal/snapshot"
)

// Handler carries the engine and the watch hub across endpoints.
type Handler struct {
	engine *engine.Engine
	hub    *WatchHub
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{engine: eng, hub: NewWatchHub()}
}

// generateRequest is a Snapshot plus per-request knobs.
type generateRequest struct {
	snapshot.Snapshot
	Mode        string  `json:"mode,omitempty"`
	LocalWeight float64 `json:"localWeight,omitempty"`
	Force       bool    `json:"force,omitempty"`
	WatchID     string  `json:"watchId,omitempty"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var emitter progress.Emitter
	if watchID := strings.TrimSpace(req.WatchID); watchID != "" {
		emitter = h.hub.Emitter(watchID)
		ctx = progress.WithEmitter(ctx, emitter)
		defer h.hub.Release(watchID)
	}

	rep, err := h.engine.GenerateReport(ctx, req.Snapshot, engine.RequestOptions{
		Mode:        req.Mode,
		LocalWeight: req.LocalWeight,
		Force:       req.Force,
	})
	if err != nil {
		if emitter != nil {
			emitter.EmitError(err.Error())
		}
		status := http.StatusInternalServerError
		if errors.Is(err, snapshot.ErrEmptySnapshot) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// handleReportLookup serves /api/v1/reports/{owner}/{repo} and its
// /history and /archive-url children.
func (h *Handler) handleReportLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		http.Error(w, "expected /api/v1/reports/{owner}/{repo}", http.StatusBadRequest)
		return
	}
	repo := parts[0] + "/" + parts[1]

	switch {
	case len(parts) == 2:
		h.latest(w, r, repo)
	case len(parts) == 3 && parts[2] == "history":
		h.history(w, r, repo)
	case len(parts) == 3 && parts[2] == "archive-url":
		h.archiveURL(w, r, repo)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request, repo string) {
	rep, err := h.engine.Latest(r.Context(), repo)
	if err != nil {
		if errors.Is(err, reportstore.ErrNotFound) {
			http.Error(w, "no report for "+repo, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, repo string) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	reports, err := h.engine.History(r.Context(), repo, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []report.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repository": repo,
		"count":      len(reports),
		"reports":    reports,
	})
}

func (h *Handler) archiveURL(w http.ResponseWriter, r *http.Request, repo string) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		rep, err := h.engine.Latest(r.Context(), repo)
		if err != nil {
			if errors.Is(err, reportstore.ErrNotFound) {
				http.Error(w, "no report for "+repo, http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		id = rep.ID
	}

	url, err := h.engine.ArchiveURL(r.Context(), repo, id)
	if err != nil {
		if errors.Is(err, engine.ErrArchiveDisabled) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repository": repo,
		"reportId":   id,
		"url":        url,
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
