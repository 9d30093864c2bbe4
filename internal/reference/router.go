package reference

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// Router exposes the master data endpoints.
type Router struct {
	svc *Service
}

func NewRouter(svc *Service) *Router {
	return &Router{svc: svc}
}

// HandleCreate handles POST /api/references
func (rt *Router) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var code Code
	if err := json.NewDecoder(r.Body).Decode(&code); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !code.Active {
		code.Active = true
	}

	if err := rt.svc.Create(r.Context(), &code); err != nil {
		http.Error(w, "failed to create reference code: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(code); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
}

// HandleList handles GET /api/references?category={n}&all={bool}
func (rt *Router) HandleList(w http.ResponseWriter, r *http.Request) {
	categoryStr := r.URL.Query().Get("category")
	if categoryStr == "" {
		http.Error(w, "category query parameter is required", http.StatusBadRequest)
		return
	}
	category, err := strconv.Atoi(categoryStr)
	if err != nil {
		http.Error(w, "invalid category: "+err.Error(), http.StatusBadRequest)
		return
	}

	activeOnly := r.URL.Query().Get("all") != "true"
	codes, err := rt.svc.ListByCategory(r.Context(), category, activeOnly)
	if err != nil {
		http.Error(w, "failed to list reference codes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(codes); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
}

// HandleToggle handles POST /api/references/{category}/{code}/toggle
func (rt *Router) HandleToggle(w http.ResponseWriter, r *http.Request) {
	category, err := strconv.Atoi(r.PathValue("category"))
	if err != nil {
		http.Error(w, "invalid category: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := rt.svc.ToggleActive(r.Context(), r.PathValue("code"), category); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /api/references/{category}/{code}
func (rt *Router) HandleGet(w http.ResponseWriter, r *http.Request) {
	category, err := strconv.Atoi(r.PathValue("category"))
	if err != nil {
		http.Error(w, "invalid category: "+err.Error(), http.StatusBadRequest)
		return
	}

	code, err := rt.svc.GetByCode(r.Context(), r.PathValue("code"), category)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(code); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
}
