package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/luno/jettison/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luno/openclaw"
)

type Handler struct {
	manager *openclaw.Manager
}

// NewRouter exposes the manager's read operations and config diffing as JSON.
// Prometheus metrics are served on /metrics.
func NewRouter(m *openclaw.Manager) http.Handler {
	h := &Handler{manager: m}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/instances", h.handleListInstances)
	r.Route("/instances/{id}", func(r chi.Router) {
		r.Get("/", h.handleGetInstance)
		r.Get("/config", h.handleConfig)
		r.Get("/snapshots", h.handleSnapshots)
		r.Get("/history", h.handleHistory)
	})
	r.Get("/snapshots/{a}/diff/{b}", h.handleSnapshotDiff)
	r.Post("/config/diff", h.handleConfigDiff)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (h *Handler) handleListInstances(w http.ResponseWriter, r *http.Request) {
	list, err := h.manager.ListInstances(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	inst, err := h.manager.GetInstance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.manager.GetInstance(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	config, err := h.manager.Compose(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, config)
}

func (h *Handler) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.manager.GetInstance(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.manager.ListSnapshots(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.manager.GetInstance(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.manager.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleSnapshotDiff(w http.ResponseWriter, r *http.Request) {
	changes, err := h.manager.CompareSnapshots(r.Context(), chi.URLParam(r, "a"), chi.URLParam(r, "b"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

type configDiffRequest struct {
	A openclaw.Config `json:"a"`
	B openclaw.Config `json:"b"`
}

func (h *Handler) handleConfigDiff(w http.ResponseWriter, r *http.Request) {
	var req configDiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	writeJSON(w, http.StatusOK, openclaw.DiffConfigs(req.A, req.B))
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, openclaw.ErrRecordNotFound) || errors.Is(err, openclaw.ErrSnapshotNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
