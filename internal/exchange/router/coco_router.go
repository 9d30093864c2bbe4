package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dandeat/barkir-core/internal/beacukai"
	"github.com/dandeat/barkir-core/internal/exchange/model"
	"github.com/dandeat/barkir-core/internal/exchange/service"
)

// CocoRouter handles HTTP requests for container gate exchanges.
type CocoRouter struct {
	cs *service.CocoService
}

func NewCocoRouter(cs *service.CocoService) *CocoRouter {
	return &CocoRouter{cs: cs}
}

// HandleCreateCoco handles POST /api/coco-exchanges
func (cr *CocoRouter) HandleCreateCoco(w http.ResponseWriter, r *http.Request) {
	var exchange model.CocoExchange
	if err := json.NewDecoder(r.Body).Decode(&exchange); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := cr.cs.Create(r.Context(), &exchange); err != nil {
		if errors.Is(err, service.ErrExchangeExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "failed to create exchange: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(exchange)
}

// HandleListCoco handles GET /api/coco-exchanges
func (cr *CocoRouter) HandleListCoco(w http.ResponseWriter, r *http.Request) {
	exchanges, err := cr.cs.List(r.Context(), model.ExchangeState(r.URL.Query().Get("state")))
	if err != nil {
		slog.Error("Failed to list COCO exchanges", "error", err)
		http.Error(w, "failed to list exchanges", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exchanges)
}

// HandleGetCoco handles GET /api/coco-exchanges/{id}
func (cr *CocoRouter) HandleGetCoco(w http.ResponseWriter, r *http.Request) {
	exchange, err := cr.cs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrExchangeNotFound) {
			http.Error(w, "exchange not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to retrieve exchange: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exchange)
}

// HandleSetCocoReady handles POST /api/coco-exchanges/{id}/ready
func (cr *CocoRouter) HandleSetCocoReady(w http.ResponseWriter, r *http.Request) {
	cr.runAction(w, r, "mark ready", cr.cs.SetReady)
}

// HandleSetCocoDraft handles POST /api/coco-exchanges/{id}/draft
func (cr *CocoRouter) HandleSetCocoDraft(w http.ResponseWriter, r *http.Request) {
	cr.runAction(w, r, "reset to draft", cr.cs.SetDraft)
}

// HandleDeriveCocoOut handles POST /api/coco-exchanges/{id}/derive-out
func (cr *CocoRouter) HandleDeriveCocoOut(w http.ResponseWriter, r *http.Request) {
	cr.runAction(w, r, "derive gate-out", cr.cs.DeriveOut)
}

// HandleSendCoco handles POST /api/coco-exchanges/{id}/send
func (cr *CocoRouter) HandleSendCoco(w http.ResponseWriter, r *http.Request) {
	cr.runAction(w, r, "send", cr.cs.Send)
}

func (cr *CocoRouter) runAction(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, id string) (*model.CocoExchange, error)) {
	id := r.PathValue("id")

	exchange, err := fn(r.Context(), id)
	if err != nil {
		writeCocoError(w, id, action, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exchange)
}

func writeCocoError(w http.ResponseWriter, id, action string, err error) {
	switch {
	case errors.Is(err, service.ErrExchangeNotFound):
		http.Error(w, "exchange not found", http.StatusNotFound)
	case errors.Is(err, service.ErrExchangeExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrMissingCredentials), errors.Is(err, service.ErrMissingReference),
		errors.Is(err, service.ErrMissingPlateNo):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrSubmissionRejected):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, beacukai.ErrTransport), errors.Is(err, beacukai.ErrProtocol):
		slog.Error("COCO exchange remote failure", "id", id, "action", action, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		slog.Error("COCO exchange action failed", "id", id, "action", action, "error", err)
		http.Error(w, "failed to "+action+": "+err.Error(), http.StatusInternalServerError)
	}
}
