package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dandeat/barkir-core/internal/beacukai"
	"github.com/dandeat/barkir-core/internal/exchange/model"
	"github.com/dandeat/barkir-core/internal/exchange/service"
)

// PLPRouter handles HTTP requests for relocation permit requests.
type PLPRouter struct {
	ps *service.PLPService
}

func NewPLPRouter(ps *service.PLPService) *PLPRouter {
	return &PLPRouter{ps: ps}
}

// HandleCreatePLP handles POST /api/plp-requests
func (pr *PLPRouter) HandleCreatePLP(w http.ResponseWriter, r *http.Request) {
	var request model.PlpRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := pr.ps.Create(r.Context(), &request); err != nil {
		http.Error(w, "failed to create PLP request: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

// HandleListPLP handles GET /api/plp-requests
func (pr *PLPRouter) HandleListPLP(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	requests, err := pr.ps.List(r.Context(), model.ExchangeState(r.URL.Query().Get("state")), limit)
	if err != nil {
		slog.Error("Failed to list PLP requests", "error", err)
		http.Error(w, "failed to list PLP requests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

// HandleGetPLP handles GET /api/plp-requests/{id}
func (pr *PLPRouter) HandleGetPLP(w http.ResponseWriter, r *http.Request) {
	request, err := pr.ps.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrExchangeNotFound) {
			http.Error(w, "PLP request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to retrieve PLP request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(request)
}

// HandleDuplicatePLP handles POST /api/plp-requests/{id}/duplicate
func (pr *PLPRouter) HandleDuplicatePLP(w http.ResponseWriter, r *http.Request) {
	err := pr.ps.Duplicate(r.Context(), r.PathValue("id"))
	http.Error(w, err.Error(), http.StatusMethodNotAllowed)
}

// HandleSetPLPReady handles POST /api/plp-requests/{id}/ready
func (pr *PLPRouter) HandleSetPLPReady(w http.ResponseWriter, r *http.Request) {
	pr.runAction(w, r, "mark ready", pr.ps.SetReady)
}

// HandleSetPLPDraft handles POST /api/plp-requests/{id}/draft
func (pr *PLPRouter) HandleSetPLPDraft(w http.ResponseWriter, r *http.Request) {
	pr.runAction(w, r, "reset to draft", pr.ps.SetDraft)
}

// HandleSendPLP handles POST /api/plp-requests/{id}/send
func (pr *PLPRouter) HandleSendPLP(w http.ResponseWriter, r *http.Request) {
	pr.runAction(w, r, "send", pr.ps.Send)
}

// HandlePollPLP handles POST /api/plp-requests/{id}/poll
func (pr *PLPRouter) HandlePollPLP(w http.ResponseWriter, r *http.Request) {
	pr.runAction(w, r, "poll response", pr.ps.Poll)
}

func (pr *PLPRouter) runAction(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, id string) (*model.PlpRequest, error)) {
	id := r.PathValue("id")

	request, err := fn(r.Context(), id)
	if err != nil {
		writePLPError(w, id, action, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(request)
}

func writePLPError(w http.ResponseWriter, id, action string, err error) {
	switch {
	case errors.Is(err, service.ErrExchangeNotFound):
		http.Error(w, "PLP request not found", http.StatusNotFound)
	case errors.Is(err, service.ErrWrongState), errors.Is(err, service.ErrMissingCredentials):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrSubmissionRejected), errors.Is(err, service.ErrEmptyResponse):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, beacukai.ErrTransport), errors.Is(err, beacukai.ErrProtocol):
		slog.Error("PLP remote failure", "id", id, "action", action, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		slog.Error("PLP action failed", "id", id, "action", action, "error", err)
		http.Error(w, "failed to "+action+": "+err.Error(), http.StatusInternalServerError)
	}
}
