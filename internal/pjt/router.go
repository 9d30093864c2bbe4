package pjt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Router handles HTTP requests for PJT provider master data.
type Router struct {
	svc *Service
}

func NewRouter(svc *Service) *Router {
	return &Router{svc: svc}
}

// HandleCreate handles POST /api/pjt-providers requests.
func (rt *Router) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var provider Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := rt.svc.Create(r.Context(), &provider); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("Failed to create pjt provider", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(provider)
}

// HandleList handles GET /api/pjt-providers requests.
func (rt *Router) HandleList(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("all") == "true"

	providers, err := rt.svc.List(r.Context(), includeInactive)
	if err != nil {
		slog.Error("Failed to list pjt providers", "error", err)
		http.Error(w, "failed to list providers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(providers)
}

// HandleGet handles GET /api/pjt-providers/{code} requests.
func (rt *Router) HandleGet(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	provider, err := rt.svc.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get pjt provider", "code", code, "error", err)
		http.Error(w, "failed to get provider", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(provider)
}

// HandleUpdate handles PATCH /api/pjt-providers/{id} requests.
func (rt *Router) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	provider, err := rt.svc.Update(r.Context(), id, updates)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to update pjt provider", "id", id, "error", err)
		http.Error(w, "failed to update provider", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(provider)
}
