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
	"github.com/dandeat/barkir-core/internal/config"
	"github.com/dandeat/barkir-core/internal/exchange/model"
	"github.com/dandeat/barkir-core/internal/reference"
	"github.com/dandeat/barkir-core/internal/sequence"
	shipmodel "github.com/dandeat/barkir-core/internal/shipment/model"
)

var (
	// ErrExchangeNotFound is returned when no exchange matches the lookup.
	ErrExchangeNotFound = errors.New("exchange not found")
	// ErrMissingCredentials is returned when a submission is attempted without
	// configured TPS credentials. No network call is made.
	ErrMissingCredentials = errors.New("TPS credentials are not configured")
	// ErrMissingReference is returned when a required document reference code
	// is absent from the master data.
	ErrMissingReference = errors.New("required reference code not found")
	// ErrSubmissionRejected is returned when the service answers a submission
	// with anything but a success marker.
	ErrSubmissionRejected = errors.New("submission rejected by service")
	// ErrExchangeExists signals a derive was skipped because the exchange is already there.
	ErrExchangeExists = errors.New("exchange already exists")
	// ErrMissingPlateNo is returned when a gate-out is derived from gate-in
	// details that never recorded the vehicle plate number.
	ErrMissingPlateNo = errors.New("gate-in vehicle plate number is not recorded")
)

const auditEntityCoco = "coco.exchange"

// BeacukaiClient is the slice of the SOAP client the exchange services use.
type BeacukaiClient interface {
	SubmitCoco(ctx context.Context, documentXML string) (string, error)
	SubmitPLP(ctx context.Context, documentXML string) (string, error)
	GetPLPResponse(ctx context.Context, warehouseCode, refNumber string) (string, error)
}

// ReferenceLookup resolves reference master data codes.
type ReferenceLookup interface {
	GetByCode(ctx context.Context, code string, category int) (*reference.Code, error)
}

// CocoService manages gate movement exchanges: creation, derivation of the
// mirrored gate-out notification, and submission to the customs service.
type CocoService struct {
	db       *gorm.DB
	cfg      *config.BeacukaiConfig
	client   BeacukaiClient
	seq      *sequence.Service
	recorder *audit.Recorder
	archiver *archive.Service
	refs     ReferenceLookup
}

func NewCocoService(
	db *gorm.DB,
	cfg *config.BeacukaiConfig,
	client BeacukaiClient,
	seq *sequence.Service,
	recorder *audit.Recorder,
	archiver *archive.Service,
	refs ReferenceLookup,
) *CocoService {
	return &CocoService{
		db:       db,
		cfg:      cfg,
		client:   client,
		seq:      seq,
		recorder: recorder,
		archiver: archiver,
		refs:     refs,
	}
}

// Create persists a new exchange, assigning its reference number from the
// sequence when absent. The reference number is immutable afterwards.
func (s *CocoService) Create(ctx context.Context, ex *model.CocoExchange) error {
	if ex.DocCode == "" {
		return fmt.Errorf("document code is required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createInTx(ctx, tx, ex)
	})
}

func (s *CocoService) createInTx(ctx context.Context, tx *gorm.DB, ex *model.CocoExchange) error {
	if ex.RefNumber == "" {
		ref, err := s.seq.NextByCode(ctx, tx, "coco.exchange")
		if err != nil {
			return fmt.Errorf("failed to assign reference number: %w", err)
		}
		ex.RefNumber = ref
	}
	if ex.TerminalCode == "" {
		ex.TerminalCode = s.cfg.KodeTPS
	}
	if ex.State == "" {
		ex.State = model.ExchangeStateDraft
	}
	for i := range ex.Details {
		d := &ex.Details[i]
		if d.DocInOutCode == "" {
			d.DocInOutCode = "3"
		}
		if d.TransportMode == "" {
			d.TransportMode = "1"
		}
		if d.DestWarehouse == "" {
			d.DestWarehouse = "BBLK"
		}
		if d.TPSLicenseNo == "" {
			d.TPSLicenseNo = "1784"
		}
		if d.TPSLicenseDate == nil {
			licenseDate := model.DefaultTPSLicenseDate
			d.TPSLicenseDate = &licenseDate
		}
	}
	if err := tx.Create(ex).Error; err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}
	return nil
}

// GetByID loads an exchange with its detail lines.
func (s *CocoService) GetByID(ctx context.Context, id string) (*model.CocoExchange, error) {
	var ex model.CocoExchange
	err := s.db.WithContext(ctx).Preload("Details").First(&ex, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExchangeNotFound
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return &ex, nil
}

// List returns exchanges, optionally filtered by state.
func (s *CocoService) List(ctx context.Context, state model.ExchangeState) ([]model.CocoExchange, error) {
	var exchanges []model.CocoExchange
	q := s.db.WithContext(ctx).Preload("Details").Order("ref_number DESC")
	if state != "" {
		q = q.Where("state = ?", state)
	}
	if err := q.Find(&exchanges).Error; err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}

// SetDraft moves an exchange back to draft.
func (s *CocoService) SetDraft(ctx context.Context, id string) (*model.CocoExchange, error) {
	return s.setState(ctx, id, model.ExchangeStateDraft)
}

// SetReady marks an exchange for submission.
func (s *CocoService) SetReady(ctx context.Context, id string) (*model.CocoExchange, error) {
	return s.setState(ctx, id, model.ExchangeStateReady)
}

func (s *CocoService) setState(ctx context.Context, id string, state model.ExchangeState) (*model.CocoExchange, error) {
	var ex model.CocoExchange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Details").First(&ex, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExchangeNotFound
			}
			return fmt.Errorf("failed to load exchange: %w", err)
		}
		ex.State = state
		if err := tx.Model(&ex).Update("state", state).Error; err != nil {
			return fmt.Errorf("failed to update exchange state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

// DeriveOut mirrors a gate-in exchange into a gate-out one: same detail
// lines with the out document code, a zero-filled vehicle document number,
// and the shipment's actual gate-out time in the three time leaves.
func (s *CocoService) DeriveOut(ctx context.Context, cocoInID string) (*model.CocoExchange, error) {
	var out *model.CocoExchange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var in model.CocoExchange
		if err := tx.Preload("Details").First(&in, "id = ?", cocoInID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExchangeNotFound
			}
			return fmt.Errorf("failed to load exchange: %w", err)
		}

		var shipment shipmodel.Shipment
		if err := tx.First(&shipment, "id = ?", in.ShipmentID).Error; err != nil {
			return fmt.Errorf("failed to load shipment: %w", err)
		}

		derived, err := s.deriveOutInTx(ctx, tx, &in, shipment.GateOutTime)
		if err != nil {
			return err
		}
		out = derived
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CocoService) deriveOutInTx(ctx context.Context, tx *gorm.DB, in *model.CocoExchange, gateOut *time.Time) (*model.CocoExchange, error) {
	for _, d := range in.Details {
		if d.PlateNo == "" {
			return nil, fmt.Errorf("%w: container %s on exchange %s", ErrMissingPlateNo, d.ContainerNo, in.RefNumber)
		}
	}

	if _, err := s.refs.GetByCode(ctx, model.DocCodeGateOut, reference.CategoryKodeDokumen); err != nil {
		if errors.Is(err, reference.ErrNotFound) {
			return nil, fmt.Errorf("%w: document code %s in category %d", ErrMissingReference, model.DocCodeGateOut, reference.CategoryKodeDokumen)
		}
		return nil, fmt.Errorf("failed to resolve out document code: %w", err)
	}

	out := &model.CocoExchange{
		DocCode:      model.DocCodeGateOut,
		ShipmentID:   in.ShipmentID,
		TerminalCode: in.TerminalCode,
		CarrierName:  in.CarrierName,
		VoyFlightNo:  in.VoyFlightNo,
		CallSign:     in.CallSign,
		ArrivalDate:  in.ArrivalDate,
		State:        model.ExchangeStateReady,
	}

	for _, d := range in.Details {
		detail := model.ContainerDetail{
			ContainerNo:   d.ContainerNo,
			ContainerSize: d.ContainerSize,
			ContainerType: d.ContainerType,
			SealNo:        d.SealNo,
			MasterBLNo:    d.MasterBLNo,
			MasterBLDate:  d.MasterBLDate,
			Brutto:        d.Brutto,
			BC11No:        d.BC11No,
			BC11Date:      d.BC11Date,
			PosNo:         d.PosNo,
			// Gate-out lines carry a placeholder vehicle document; the
			// real movement evidence is the gate-out timestamp itself.
			DocInOutNo:     "000000",
			DocInOutDate:   gateOut,
			InOutTime:      gateOut,
			PlateNo:        d.PlateNo,
			EmptyContainer: true,
			OfficeCode:     d.OfficeCode,
			SealNoBC:       d.SealNoBC,
			SealDateBC:     gateOut,
		}
		out.Details = append(out.Details, detail)
	}

	if err := s.createInTx(ctx, tx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeriveGateIn creates the gate-in exchange for a shipment unless one
// already exists. Called from the shipment gate-in flow.
func (s *CocoService) DeriveGateIn(ctx context.Context, tx *gorm.DB, sh *shipmodel.Shipment, plateNo string) error {
	var count int64
	err := tx.Model(&model.CocoExchange{}).
		Where("shipment_id = ? AND doc_code = ?", sh.ID, model.DocCodeGateIn).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing gate-in exchange: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := s.refs.GetByCode(ctx, model.DocCodeGateIn, reference.CategoryKodeDokumen); err != nil {
		if errors.Is(err, reference.ErrNotFound) {
			return fmt.Errorf("%w: document code %s in category %d", ErrMissingReference, model.DocCodeGateIn, reference.CategoryKodeDokumen)
		}
		return fmt.Errorf("failed to resolve in document code: %w", err)
	}

	ex := &model.CocoExchange{
		DocCode:     model.DocCodeGateIn,
		ShipmentID:  sh.ID,
		CarrierName: sh.CarrierName,
		VoyFlightNo: sh.VoyFlightNo,
		CallSign:    sh.CallSign,
		ArrivalDate: sh.ArrivalDate,
		State:       model.ExchangeStateReady,
		Details: []model.ContainerDetail{{
			ContainerNo:   sh.ContainerNo,
			ContainerSize: sh.ContainerSize,
			ContainerType: "L", // loaded container, reference category 15
			MasterBLNo:    sh.Name,
			MasterBLDate:  sh.MasterDate,
			Brutto:        sh.Brutto,
			BC11No:        sh.BC11No,
			BC11Date:      sh.BC11Date,
			PosNo:         sh.PosNo,
			DocInOutNo:    sh.PLPNo,
			DocInOutDate:  sh.PLPDate,
			InOutTime:     sh.GateInTime,
			PlateNo:       plateNo,
			OfficeCode:    sh.OfficeCode,
			SealNoBC:      sh.SealNoBC,
			SealDateBC:    sh.SealDateBC,
		}},
	}
	return s.createInTx(ctx, tx, ex)
}

// DeriveGateOut mirrors the shipment's completed gate-in exchange into a
// gate-out one. Called from the shipment gate-out flow.
func (s *CocoService) DeriveGateOut(ctx context.Context, tx *gorm.DB, sh *shipmodel.Shipment) error {
	var count int64
	err := tx.Model(&model.CocoExchange{}).
		Where("shipment_id = ? AND doc_code = ?", sh.ID, model.DocCodeGateOut).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing gate-out exchange: %w", err)
	}
	if count > 0 {
		return nil
	}

	var in model.CocoExchange
	err = tx.Preload("Details").
		Where("shipment_id = ? AND doc_code = ?", sh.ID, model.DocCodeGateIn).
		Order("ref_number DESC").
		First(&in).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("gate-in exchange for shipment %s has not been recorded", sh.Name)
		}
		return fmt.Errorf("failed to load gate-in exchange: %w", err)
	}
	if in.State != model.ExchangeStateCompleted {
		return fmt.Errorf("gate-in exchange %s is not completed yet (state %s)", in.RefNumber, in.State)
	}
	if sh.GateOutTime == nil {
		return fmt.Errorf("gate-out time is not set on shipment %s", sh.Name)
	}

	_, err = s.deriveOutInTx(ctx, tx, &in, sh.GateOutTime)
	return err
}

// Send submits an exchange to the customs service and settles its state from
// the textual response. The configured credentials are checked before any
// network traffic.
func (s *CocoService) Send(ctx context.Context, id string) (*model.CocoExchange, error) {
	if !s.cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}

	ex, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	documentXML, err := BuildCocoXML(ex)
	if err != nil {
		return nil, err
	}
	s.archiver.StoreExchange(ctx, "coco", ex.RefNumber, "request", []byte(documentXML))

	responseText, err := s.client.SubmitCoco(ctx, documentXML)
	if err != nil {
		// Transport failure leaves the record untouched; the caller (or
		// the batch driver) decides what to do with it.
		return nil, fmt.Errorf("failed to submit gate movement %s: %w", ex.RefNumber, err)
	}
	s.archiver.StoreExchange(ctx, "coco", ex.RefNumber, "response", []byte(responseText))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ex.ResponseCount++
		ex.LastResponse = responseText
		if isCocoSuccess(responseText) {
			ex.State = model.ExchangeStateCompleted
			s.recorder.Post(ctx, tx, auditEntityCoco, ex.ID, "Gate movement %s accepted: %s", ex.RefNumber, responseText)
		} else {
			ex.State = model.ExchangeStateError
			s.recorder.Post(ctx, tx, auditEntityCoco, ex.ID, "Gate movement %s rejected: %s", ex.RefNumber, responseText)
		}
		updates := map[string]interface{}{
			"response_count": ex.ResponseCount,
			"last_response":  ex.LastResponse,
			"state":          ex.State,
		}
		if err := tx.Model(&model.CocoExchange{}).Where("id = ?", ex.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ex.State == model.ExchangeStateError {
		return ex, fmt.Errorf("%w: %s", ErrSubmissionRejected, responseText)
	}
	return ex, nil
}

// SendReady drives every ready exchange through Send. A failure on one
// record marks that record as error and the batch continues.
func (s *CocoService) SendReady(ctx context.Context) {
	exchanges, err := s.List(ctx, model.ExchangeStateReady)
	if err != nil {
		slog.Error("Failed to list ready gate movement exchanges", "error", err)
		return
	}

	for _, ex := range exchanges {
		if _, err := s.Send(ctx, ex.ID.String()); err != nil {
			slog.Error("Gate movement submission failed", "refNumber", ex.RefNumber, "error", err)
			if updErr := s.db.WithContext(ctx).Model(&model.CocoExchange{}).
				Where("id = ?", ex.ID).
				Update("state", model.ExchangeStateError).Error; updErr != nil {
				slog.Error("Failed to mark exchange as error", "refNumber", ex.RefNumber, "error", updErr)
			}
		}
	}

	slog.Info("Gate movement batch completed", "processed", len(exchanges))
}

// isCocoSuccess reports whether the service response text counts as an
// accepted submission. A resubmission notice counts as success.
func isCocoSuccess(responseText string) bool {
	lower := strings.ToLower(responseText)
	return strings.Contains(lower, "berhasil") || strings.Contains(responseText, "sudah pernah diajukan")
}
