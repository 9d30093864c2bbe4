package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dandeat/barkir-core/internal/auth"
	"github.com/dandeat/barkir-core/internal/shipment/model"
	"github.com/dandeat/barkir-core/internal/shipment/service"
)

// ContainerRouter handles HTTP requests for container gate movements.
type ContainerRouter struct {
	cs *service.ContainerService
}

func NewContainerRouter(cs *service.ContainerService) *ContainerRouter {
	return &ContainerRouter{cs: cs}
}

// HandleCreateContainer handles POST /api/containers
func (cr *ContainerRouter) HandleCreateContainer(w http.ResponseWriter, r *http.Request) {
	var container model.Container
	if err := json.NewDecoder(r.Body).Decode(&container); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := cr.cs.Create(r.Context(), &container); err != nil {
		http.Error(w, "failed to create container: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(container)
}

// HandleGetContainer handles GET /api/containers/{id}
func (cr *ContainerRouter) HandleGetContainer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	container, err := cr.cs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrContainerNotFound) {
			http.Error(w, "container not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to retrieve container: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(container)
}

// HandleListByShipment handles GET /api/shipments/{id}/containers
func (cr *ContainerRouter) HandleListByShipment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	containers, err := cr.cs.ListByShipment(r.Context(), id)
	if err != nil {
		slog.Error("Failed to list containers", "shipment_id", id, "error", err)
		http.Error(w, "failed to list containers: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(containers)
}

// HandleSyncContainers handles POST /api/sync/containers, the endpoint PJT
// providers push their container manifests to. The provider is resolved from
// the sync API key by the auth middleware.
func (cr *ContainerRouter) HandleSyncContainers(w http.ResponseWriter, r *http.Request) {
	provider := auth.GetProviderContext(r.Context())
	if provider == nil {
		http.Error(w, "provider authentication required", http.StatusUnauthorized)
		return
	}

	var containers []model.Container
	if err := json.NewDecoder(r.Body).Decode(&containers); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	count, err := cr.cs.SyncFromProvider(r.Context(), provider.Code, containers)
	if err != nil {
		slog.Error("Container sync failed", "provider", provider.Code, "error", err)
		http.Error(w, "failed to sync containers: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"synced": count})
}

// HandleSetArrived handles POST /api/containers/{id}/arrived
func (cr *ContainerRouter) HandleSetArrived(w http.ResponseWriter, r *http.Request) {
	cr.runTransition(w, r, "arrive", cr.cs.SetArrived)
}

// HandleGateIn handles POST /api/containers/{id}/gate-in
func (cr *ContainerRouter) HandleGateIn(w http.ResponseWriter, r *http.Request) {
	cr.runTransition(w, r, "gate in", cr.cs.GateIn)
}

// HandleGateOut handles POST /api/containers/{id}/gate-out
func (cr *ContainerRouter) HandleGateOut(w http.ResponseWriter, r *http.Request) {
	cr.runTransition(w, r, "gate out", cr.cs.GateOut)
}

// HandleComplete handles POST /api/containers/{id}/complete
func (cr *ContainerRouter) HandleComplete(w http.ResponseWriter, r *http.Request) {
	cr.runTransition(w, r, "complete", cr.cs.Complete)
}

// HandleResetToDraft handles POST /api/containers/{id}/reset
func (cr *ContainerRouter) HandleResetToDraft(w http.ResponseWriter, r *http.Request) {
	cr.runTransition(w, r, "reset", cr.cs.ResetToDraft)
}

func (cr *ContainerRouter) runTransition(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, id string) (*model.Container, error)) {
	id := r.PathValue("id")

	container, err := fn(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContainerNotFound):
			http.Error(w, "container not found", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			slog.Error("Container transition failed", "id", id, "action", action, "error", err)
			http.Error(w, "failed to "+action+": "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(container)
}
