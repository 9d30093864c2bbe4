package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dandeat/barkir-core/internal/shipment/model"
)

var (
	// ErrShipmentNotFound is returned when no shipment matches the lookup.
	ErrShipmentNotFound = errors.New("shipment not found")
	// ErrDuplicateMasterNo is returned when the master BL/AWB number is already registered.
	ErrDuplicateMasterNo = errors.New("master BL/AWB number already exists")
	// ErrMissingGateData is returned when a gate action lacks a required field.
	ErrMissingGateData = errors.New("missing gate data")
)

// GateInRequest carries the data captured at the gate when a shipment's
// container enters the yard.
type GateInRequest struct {
	GateInTime    time.Time  `json:"gateInTime"`
	PlateNo       string     `json:"plateNo"`
	CallSign      string     `json:"callSign,omitempty"`
	PLPNo         string     `json:"plpNo,omitempty"`
	PLPDate       *time.Time `json:"plpDate,omitempty"`
	SealNoBC      string     `json:"sealNoBc,omitempty"`
	SealDateBC    *time.Time `json:"sealDateBc,omitempty"`
	ContainerSize string     `json:"containerSize,omitempty"`
	ContainerNo   string     `json:"containerNo,omitempty"`
}

// GateOutRequest carries the gate-out timestamp.
type GateOutRequest struct {
	GateOutTime time.Time `json:"gateOutTime"`
}

// GateExchangeDeriver creates the customs gate notifications that accompany a
// shipment's gate movements. Implemented by the exchange service.
type GateExchangeDeriver interface {
	// DeriveGateIn creates a gate-in exchange for the shipment unless one
	// already exists.
	DeriveGateIn(ctx context.Context, tx *gorm.DB, sh *model.Shipment, plateNo string) error
	// DeriveGateOut mirrors the completed gate-in exchange into a gate-out
	// one. It fails when the gate-in exchange is missing or not completed.
	DeriveGateOut(ctx context.Context, tx *gorm.DB, sh *model.Shipment) error
}

// ShipmentService manages shipments and their gate movement flows.
type ShipmentService struct {
	db      *gorm.DB
	deriver GateExchangeDeriver
}

func NewShipmentService(db *gorm.DB, deriver GateExchangeDeriver) *ShipmentService {
	return &ShipmentService{db: db, deriver: deriver}
}

// Create registers a new shipment. The master BL/AWB number must be unique.
func (s *ShipmentService) Create(ctx context.Context, sh *model.Shipment) error {
	if sh.Name == "" {
		return fmt.Errorf("master BL/AWB number is required")
	}
	if sh.State == "" {
		sh.State = model.ShipmentStateDraft
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Shipment{}).Where("name = ?", sh.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check master number: %w", err)
		}
		if count > 0 {
			return ErrDuplicateMasterNo
		}
		if err := tx.Create(sh).Error; err != nil {
			return fmt.Errorf("failed to create shipment: %w", err)
		}
		return nil
	})
}

// GetByID loads a shipment with its containers and kemasan items.
func (s *ShipmentService) GetByID(ctx context.Context, id string) (*model.Shipment, error) {
	var shipment model.Shipment
	err := s.db.WithContext(ctx).
		Preload("Containers").
		Preload("Kemasans").
		First(&shipment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	shipment.ContainerCount = len(shipment.Containers)
	shipment.KemasanCount = len(shipment.Kemasans)
	return &shipment, nil
}

// List returns shipments ordered by creation date, newest first.
func (s *ShipmentService) List(ctx context.Context, limit, offset int) ([]model.Shipment, error) {
	var shipments []model.Shipment
	q := s.db.WithContext(ctx).Order("created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&shipments).Error; err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	return shipments, nil
}

// Confirm moves a shipment from draft to confirmed.
func (s *ShipmentService) Confirm(ctx context.Context, id string) (*model.Shipment, error) {
	return s.setState(ctx, id, model.ShipmentStateConfirmed, model.ShipmentStateDraft)
}

// ResetToDraft returns a shipment to draft.
func (s *ShipmentService) ResetToDraft(ctx context.Context, id string) (*model.Shipment, error) {
	return s.setState(ctx, id, model.ShipmentStateDraft)
}

// StartClearance marks an arrived shipment as under customs clearance.
func (s *ShipmentService) StartClearance(ctx context.Context, id string) (*model.Shipment, error) {
	return s.setState(ctx, id, model.ShipmentStateOnClearance, model.ShipmentStateIn)
}

// CompleteClearance marks the customs clearance of a shipment as finished.
func (s *ShipmentService) CompleteClearance(ctx context.Context, id string) (*model.Shipment, error) {
	return s.setState(ctx, id, model.ShipmentStateClearanceDone, model.ShipmentStateOnClearance)
}

// GateIn records the gate-in data on the shipment, moves it to the `in`
// state, and derives the customs gate-in notification when none exists yet.
func (s *ShipmentService) GateIn(ctx context.Context, id string, req *GateInRequest) (*model.Shipment, error) {
	if req.GateInTime.IsZero() {
		return nil, fmt.Errorf("%w: gate-in time is required", ErrMissingGateData)
	}
	if req.PlateNo == "" {
		return nil, fmt.Errorf("%w: vehicle plate number is required", ErrMissingGateData)
	}

	var shipment model.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&shipment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShipmentNotFound
			}
			return fmt.Errorf("failed to load shipment: %w", err)
		}

		gateIn := req.GateInTime.UTC()
		shipment.GateInTime = &gateIn
		if req.CallSign != "" {
			shipment.CallSign = req.CallSign
		}
		if req.PLPNo != "" {
			shipment.PLPNo = req.PLPNo
		}
		if req.PLPDate != nil {
			shipment.PLPDate = req.PLPDate
		}
		if req.SealNoBC != "" {
			shipment.SealNoBC = req.SealNoBC
		}
		if req.SealDateBC != nil {
			shipment.SealDateBC = req.SealDateBC
		}
		if req.ContainerSize != "" {
			shipment.ContainerSize = req.ContainerSize
		}
		if req.ContainerNo != "" {
			shipment.ContainerNo = req.ContainerNo
		}
		shipment.State = model.ShipmentStateIn

		if err := tx.Save(&shipment).Error; err != nil {
			return fmt.Errorf("failed to save shipment: %w", err)
		}

		if err := s.deriver.DeriveGateIn(ctx, tx, &shipment, req.PlateNo); err != nil {
			return fmt.Errorf("failed to derive gate-in exchange: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// GateOut records the gate-out time and derives the customs gate-out
// notification from the completed gate-in one.
func (s *ShipmentService) GateOut(ctx context.Context, id string, req *GateOutRequest) (*model.Shipment, error) {
	if req.GateOutTime.IsZero() {
		return nil, fmt.Errorf("%w: gate-out time is required", ErrMissingGateData)
	}

	var shipment model.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&shipment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShipmentNotFound
			}
			return fmt.Errorf("failed to load shipment: %w", err)
		}

		if shipment.CallSign == "" {
			return fmt.Errorf("%w: call sign is not set on shipment %s", ErrMissingGateData, shipment.Name)
		}
		if shipment.ContainerSize == "" {
			return fmt.Errorf("%w: container size is not set on shipment %s", ErrMissingGateData, shipment.Name)
		}

		gateOut := req.GateOutTime.UTC()
		shipment.GateOutTime = &gateOut

		if err := tx.Save(&shipment).Error; err != nil {
			return fmt.Errorf("failed to save shipment: %w", err)
		}

		if err := s.deriver.DeriveGateOut(ctx, tx, &shipment); err != nil {
			return fmt.Errorf("failed to derive gate-out exchange: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// SetPLP writes an approved relocation permit number and date onto the shipment.
func (s *ShipmentService) SetPLP(ctx context.Context, tx *gorm.DB, shipmentID string, plpNo string, plpDate time.Time) error {
	updates := map[string]interface{}{
		"plp_no":   plpNo,
		"plp_date": plpDate,
	}
	if err := tx.WithContext(ctx).Model(&model.Shipment{}).Where("id = ?", shipmentID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to set PLP on shipment: %w", err)
	}
	return nil
}

// setState transitions a shipment into target. When allowedFrom states are
// given the current state must be one of them.
func (s *ShipmentService) setState(ctx context.Context, id string, target model.ShipmentState, allowedFrom ...model.ShipmentState) (*model.Shipment, error) {
	var shipment model.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&shipment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShipmentNotFound
			}
			return fmt.Errorf("failed to load shipment: %w", err)
		}
		if len(allowedFrom) > 0 {
			allowed := false
			for _, from := range allowedFrom {
				if shipment.State == from {
					allowed = true
					break
				}
			}
			if !allowed {
				return fmt.Errorf("%w: cannot move shipment %s from %s to %s",
					ErrInvalidTransition, shipment.Name, shipment.State, target)
			}
		}
		shipment.State = target
		if err := tx.Save(&shipment).Error; err != nil {
			return fmt.Errorf("failed to save shipment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}
