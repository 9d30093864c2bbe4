package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dandeat/barkir-core/internal/shipment/model"
	"github.com/dandeat/barkir-core/internal/shipment/service"
)

// KemasanRouter handles HTTP requests for packaging items.
type KemasanRouter struct {
	ks *service.KemasanService
}

func NewKemasanRouter(ks *service.KemasanService) *KemasanRouter {
	return &KemasanRouter{ks: ks}
}

// HandleCreateKemasan handles POST /api/kemasan
func (kr *KemasanRouter) HandleCreateKemasan(w http.ResponseWriter, r *http.Request) {
	var kemasan model.Kemasan
	if err := json.NewDecoder(r.Body).Decode(&kemasan); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := kr.ks.Create(r.Context(), &kemasan); err != nil {
		http.Error(w, "failed to create kemasan item: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(kemasan)
}

// HandleGetKemasan handles GET /api/kemasan/{id}
func (kr *KemasanRouter) HandleGetKemasan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	kemasan, err := kr.ks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrKemasanNotFound) {
			http.Error(w, "kemasan item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to retrieve kemasan item: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(kemasan)
}

// HandleListByContainer handles GET /api/containers/{id}/kemasan
func (kr *KemasanRouter) HandleListByContainer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	items, err := kr.ks.ListByContainer(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to list kemasan items: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// HandleTransitionKemasan handles POST /api/kemasan/{id}/transition
// Request body: {"state": "<target state>"}
func (kr *KemasanRouter) HandleTransitionKemasan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		State model.KemasanState `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	kemasan, err := kr.ks.Transition(r.Context(), id, req.State)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKemasanNotFound):
			http.Error(w, "kemasan item not found", http.StatusNotFound)
		case errors.Is(err, service.ErrUnknownKemasanState):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "failed to transition kemasan item: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(kemasan)
}
