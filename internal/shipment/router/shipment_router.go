package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	exservice "github.com/dandeat/barkir-core/internal/exchange/service"
	"github.com/dandeat/barkir-core/internal/shipment/model"
	"github.com/dandeat/barkir-core/internal/shipment/service"
	"github.com/dandeat/barkir-core/utils"
)

// parsePagination reads the offset and limit query parameters, falling back
// to the shared defaults.
func parsePagination(r *http.Request) (int, int) {
	var offset, limit *int
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		offset = &v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = &v
	}
	return utils.ClampPage(offset, limit)
}

// ShipmentRouter handles HTTP requests for shipments and their gate flows.
type ShipmentRouter struct {
	ss *service.ShipmentService
}

func NewShipmentRouter(ss *service.ShipmentService) *ShipmentRouter {
	return &ShipmentRouter{ss: ss}
}

// HandleCreateShipment handles POST /api/shipments
func (sr *ShipmentRouter) HandleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var shipment model.Shipment
	if err := json.NewDecoder(r.Body).Decode(&shipment); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := sr.ss.Create(r.Context(), &shipment); err != nil {
		if errors.Is(err, service.ErrDuplicateMasterNo) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "failed to create shipment: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(shipment)
}

// HandleListShipments handles GET /api/shipments
func (sr *ShipmentRouter) HandleListShipments(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)
	shipments, err := sr.ss.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("Failed to list shipments", "error", err)
		http.Error(w, "failed to list shipments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipments)
}

// HandleGetShipment handles GET /api/shipments/{id}
func (sr *ShipmentRouter) HandleGetShipment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	shipment, err := sr.ss.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			http.Error(w, "shipment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to retrieve shipment: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipment)
}

// HandleConfirmShipment handles POST /api/shipments/{id}/confirm
func (sr *ShipmentRouter) HandleConfirmShipment(w http.ResponseWriter, r *http.Request) {
	sr.runTransition(w, r, sr.ss.Confirm)
}

// HandleResetShipment handles POST /api/shipments/{id}/reset
func (sr *ShipmentRouter) HandleResetShipment(w http.ResponseWriter, r *http.Request) {
	sr.runTransition(w, r, sr.ss.ResetToDraft)
}

// HandleStartClearance handles POST /api/shipments/{id}/start-clearance
func (sr *ShipmentRouter) HandleStartClearance(w http.ResponseWriter, r *http.Request) {
	sr.runTransition(w, r, sr.ss.StartClearance)
}

// HandleCompleteClearance handles POST /api/shipments/{id}/complete-clearance
func (sr *ShipmentRouter) HandleCompleteClearance(w http.ResponseWriter, r *http.Request) {
	sr.runTransition(w, r, sr.ss.CompleteClearance)
}

// HandleGateIn handles POST /api/shipments/{id}/gate-in
func (sr *ShipmentRouter) HandleGateIn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req service.GateInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	shipment, err := sr.ss.GateIn(r.Context(), id, &req)
	if err != nil {
		writeShipmentError(w, id, "gate in", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipment)
}

// HandleGateOut handles POST /api/shipments/{id}/gate-out
func (sr *ShipmentRouter) HandleGateOut(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req service.GateOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	shipment, err := sr.ss.GateOut(r.Context(), id, &req)
	if err != nil {
		writeShipmentError(w, id, "gate out", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipment)
}

func (sr *ShipmentRouter) runTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*model.Shipment, error)) {
	id := r.PathValue("id")

	shipment, err := fn(r.Context(), id)
	if err != nil {
		writeShipmentError(w, id, "transition", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipment)
}

func writeShipmentError(w http.ResponseWriter, id, action string, err error) {
	switch {
	case errors.Is(err, service.ErrShipmentNotFound):
		http.Error(w, "shipment not found", http.StatusNotFound)
	case errors.Is(err, service.ErrMissingGateData), errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, exservice.ErrMissingPlateNo):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("Shipment action failed", "id", id, "action", action, "error", err)
		http.Error(w, "failed to "+action+": "+err.Error(), http.StatusInternalServerError)
	}
}
