package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dandeat/barkir-core/internal/archive"
	"github.com/dandeat/barkir-core/internal/audit"
	"github.com/dandeat/barkir-core/internal/beacukai"
	"github.com/dandeat/barkir-core/internal/config"
	"github.com/dandeat/barkir-core/internal/exchange/model"
	"github.com/dandeat/barkir-core/internal/sequence"
	shipmodel "github.com/dandeat/barkir-core/internal/shipment/model"
)

var (
	// ErrCopyForbidden is returned for any attempt to duplicate a PLP request.
	ErrCopyForbidden = errors.New("duplicating a PLP request is not allowed")
	// ErrWrongState is returned when a PLP action is attempted from the wrong state.
	ErrWrongState = errors.New("PLP request is in the wrong state for this action")
	// ErrEmptyResponse is returned when the poll comes back without a decision.
	ErrEmptyResponse = errors.New("empty response from service")
)

const auditEntityPLP = "plp.request"

var romanMonths = [...]string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// PLPService manages relocation permit requests: creation with the
// count-based surat serial, submission, and decision polling.
type PLPService struct {
	db       *gorm.DB
	cfg      *config.BeacukaiConfig
	client   BeacukaiClient
	seq      *sequence.Service
	recorder *audit.Recorder
	archiver *archive.Service
}

func NewPLPService(
	db *gorm.DB,
	cfg *config.BeacukaiConfig,
	client BeacukaiClient,
	seq *sequence.Service,
	recorder *audit.Recorder,
	archiver *archive.Service,
) *PLPService {
	return &PLPService{
		db:       db,
		cfg:      cfg,
		client:   client,
		seq:      seq,
		recorder: recorder,
		archiver: archiver,
	}
}

// Create persists a new request, assigning the system reference number from
// the sequence and the surat serial from the record count. Company-level
// defaults from configuration fill any blank routing fields.
func (s *PLPService) Create(ctx context.Context, req *model.PlpRequest) error {
	s.applyDefaults(req)
	if req.ReasonCode == "" {
		return fmt.Errorf("relocation reason code is required")
	}
	if req.OfficeCode == "" || req.OriginTPS == "" || req.OriginGudang == "" || req.DestTPS == "" || req.DestGudang == "" {
		return fmt.Errorf("office and TPS/warehouse routing codes are required")
	}
	if req.ApplicantName == "" {
		return fmt.Errorf("applicant name is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.RefNumber == "" {
			ref, err := s.seq.NextByCode(ctx, tx, "plp.request")
			if err != nil {
				return fmt.Errorf("failed to assign reference number: %w", err)
			}
			req.RefNumber = ref
		}
		if req.SuratNo == "" {
			suratNo, err := s.nextSuratNo(ctx, tx)
			if err != nil {
				return err
			}
			req.SuratNo = suratNo
		}
		if req.SuratDate == nil {
			today := time.Now().UTC()
			req.SuratDate = &today
		}
		if req.State == "" {
			req.State = model.ExchangeStateDraft
		}
		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("failed to create PLP request: %w", err)
		}
		return nil
	})
}

func (s *PLPService) applyDefaults(req *model.PlpRequest) {
	if req.OfficeCode == "" {
		req.OfficeCode = s.cfg.KodeKantor
	}
	if req.OriginTPS == "" {
		req.OriginTPS = s.cfg.TPSAsal
	}
	if req.OriginGudang == "" {
		req.OriginGudang = s.cfg.GudangAsal
	}
	if req.DestTPS == "" {
		req.DestTPS = s.cfg.TPSTujuan
	}
	if req.DestGudang == "" {
		req.DestGudang = s.cfg.GudangTujuan
	}
	if req.ApplicantName == "" {
		req.ApplicantName = s.cfg.NamaPemohon
	}
	if req.DataType == "" {
		req.DataType = "1"
	}
}

// nextSuratNo builds the human-facing serial from the record count plus a
// fixed offset, a Roman-numeral month and the year. The count-based serial
// can collide when two requests are created in the same transaction window;
// true uniqueness rests on the system reference number, so the collision is
// tolerated as the customs office does.
func (s *PLPService) nextSuratNo(ctx context.Context, tx *gorm.DB) (string, error) {
	var total int64
	if err := tx.Model(&model.PlpRequest{}).Count(&total).Error; err != nil {
		return "", fmt.Errorf("failed to count PLP requests: %w", err)
	}
	now := time.Now()
	return fmt.Sprintf("%05d/PLP/UTPK/%s/%d", total+10, romanMonths[now.Month()], now.Year()), nil
}

// GetByID loads a single request.
func (s *PLPService) GetByID(ctx context.Context, id string) (*model.PlpRequest, error) {
	var req model.PlpRequest
	err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExchangeNotFound
		}
		return nil, fmt.Errorf("failed to get PLP request: %w", err)
	}
	return &req, nil
}

// List returns requests, optionally filtered by state.
func (s *PLPService) List(ctx context.Context, state model.ExchangeState, limit int) ([]model.PlpRequest, error) {
	var requests []model.PlpRequest
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if state != "" {
		q = q.Where("state = ?", state)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list PLP requests: %w", err)
	}
	return requests, nil
}

// Duplicate always fails: PLP requests are never copied.
func (s *PLPService) Duplicate(ctx context.Context, id string) error {
	return ErrCopyForbidden
}

// SetDraft moves a request back to draft.
func (s *PLPService) SetDraft(ctx context.Context, id string) (*model.PlpRequest, error) {
	return s.setState(ctx, id, model.ExchangeStateDraft)
}

// SetReady marks a request for submission.
func (s *PLPService) SetReady(ctx context.Context, id string) (*model.PlpRequest, error) {
	return s.setState(ctx, id, model.ExchangeStateReady)
}

func (s *PLPService) setState(ctx context.Context, id string, state model.ExchangeState) (*model.PlpRequest, error) {
	var req model.PlpRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExchangeNotFound
			}
			return fmt.Errorf("failed to load PLP request: %w", err)
		}
		req.State = state
		if err := tx.Model(&req).Update("state", state).Error; err != nil {
			return fmt.Errorf("failed to update PLP state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Send submits a ready request. On a success marker the state moves to
// kirim; any other outcome is recorded as an audit note and surfaced as an
// error with the state unchanged.
func (s *PLPService) Send(ctx context.Context, id string) (*model.PlpRequest, error) {
	if !s.cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}

	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.State != model.ExchangeStateReady {
		return nil, fmt.Errorf("%w: only ready requests can be sent, %s is %s", ErrWrongState, req.RefNumber, req.State)
	}

	documentXML, err := BuildPLPXML(req)
	if err != nil {
		return nil, err
	}
	s.archiver.StoreExchange(ctx, "plp", req.RefNumber, "request", []byte(documentXML))

	responseText, err := s.client.SubmitPLP(ctx, documentXML)
	if err != nil {
		s.recorder.PostDirect(ctx, auditEntityPLP, req.ID, "Failed to send PLP request %s: %v", req.RefNumber, err)
		return nil, fmt.Errorf("failed to submit PLP request %s: %w", req.RefNumber, err)
	}
	s.archiver.StoreExchange(ctx, "plp", req.RefNumber, "response", []byte(responseText))

	if !isPLPSubmitSuccess(responseText) {
		s.recorder.PostDirect(ctx, auditEntityPLP, req.ID, "PLP submission %s failed: %s", req.RefNumber, responseText)
		return nil, fmt.Errorf("%w: %s", ErrSubmissionRejected, responseText)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req.State = model.ExchangeStateKirim
		if err := tx.Model(req).Update("state", model.ExchangeStateKirim).Error; err != nil {
			return fmt.Errorf("failed to mark PLP request as sent: %w", err)
		}
		s.recorder.Post(ctx, tx, auditEntityPLP, req.ID, "PLP request %s sent successfully", req.RefNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Poll fetches the decision for a sent request. Rejection (approval flag "T"
// or a fragment without container details) moves the request to reject with
// the reason stored; approval moves it to completed and propagates the
// permit number and date to the owning shipment.
func (s *PLPService) Poll(ctx context.Context, id string) (*model.PlpRequest, error) {
	if !s.cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}

	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.State != model.ExchangeStateKirim {
		return nil, fmt.Errorf("%w: only sent requests can be polled, %s is %s", ErrWrongState, req.RefNumber, req.State)
	}

	fragment, err := s.client.GetPLPResponse(ctx, s.cfg.KodeTPS, req.RefNumber)
	if err != nil {
		s.recorder.PostDirect(ctx, auditEntityPLP, req.ID, "Failed to fetch PLP response for %s: %v", req.RefNumber, err)
		return nil, fmt.Errorf("failed to fetch PLP response for %s: %w", req.RefNumber, err)
	}
	if strings.TrimSpace(fragment) == "" {
		return nil, fmt.Errorf("%w: request %s", ErrEmptyResponse, req.RefNumber)
	}
	s.archiver.StoreExchange(ctx, "plp", req.RefNumber, "response", []byte(fragment))

	decision, err := beacukai.ParsePLPDecision(fragment)
	if err != nil {
		s.recorder.PostDirect(ctx, auditEntityPLP, req.ID, "Error parsing PLP response for %s: %s", req.RefNumber, fragment)
		return nil, err
	}

	var plpDate *time.Time
	if decision.PLPDate != "" {
		if parsed, err := time.Parse("20060102", decision.PLPDate); err == nil {
			plpDate = &parsed
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req.PLPNo = decision.PLPNo
		req.PLPDate = plpDate
		updates := map[string]interface{}{
			"plp_no":   decision.PLPNo,
			"plp_date": plpDate,
		}
		if !decision.Approved {
			req.State = model.ExchangeStateReject
			req.RejectReason = decision.RejectReason
			updates["state"] = model.ExchangeStateReject
			updates["reject_reason"] = decision.RejectReason
			s.recorder.Post(ctx, tx, auditEntityPLP, req.ID, "PLP request %s rejected: %s", req.RefNumber, decision.RejectReason)
		} else {
			req.State = model.ExchangeStateCompleted
			updates["state"] = model.ExchangeStateCompleted
			s.recorder.Post(ctx, tx, auditEntityPLP, req.ID, "PLP request %s approved as %s", req.RefNumber, decision.PLPNo)
			if req.ShipmentID != nil {
				shipUpdates := map[string]interface{}{
					"plp_no":   decision.PLPNo,
					"plp_date": plpDate,
				}
				if err := tx.Model(&shipmodel.Shipment{}).Where("id = ?", req.ShipmentID).Updates(shipUpdates).Error; err != nil {
					return fmt.Errorf("failed to propagate PLP to shipment: %w", err)
				}
			}
		}
		if err := tx.Model(&model.PlpRequest{}).Where("id = ?", req.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record PLP decision: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// PollSent drives up to limit sent requests through Poll. A failure on one
// record is logged and the batch continues.
func (s *PLPService) PollSent(ctx context.Context, limit int) {
	requests, err := s.List(ctx, model.ExchangeStateKirim, limit)
	if err != nil {
		slog.Error("Failed to list sent PLP requests", "error", err)
		return
	}

	for _, req := range requests {
		if _, err := s.Poll(ctx, req.ID.String()); err != nil {
			slog.Error("PLP response poll failed", "refNumber", req.RefNumber, "error", err)
		}
	}

	slog.Info("PLP response batch completed", "processed", len(requests))
}

// isPLPSubmitSuccess reports whether a submission response counts as
// accepted: the textual success marker or the 017/018 status codes.
func isPLPSubmitSuccess(responseText string) bool {
	lower := strings.ToLower(responseText)
	return strings.Contains(lower, "berhasil") ||
		strings.Contains(responseText, "017") ||
		strings.Contains(responseText, "018")
}
