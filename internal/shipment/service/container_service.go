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
	// ErrContainerNotFound is returned when no container matches the lookup.
	ErrContainerNotFound = errors.New("container not found")
	// ErrInvalidTransition is returned when a gate action is attempted from the wrong state.
	ErrInvalidTransition = errors.New("invalid container state transition")
)

// ContainerService drives the gate state machine for containers.
// Every transition operates on exactly one record and fails fast when the
// container is not in the required state.
type ContainerService struct {
	db *gorm.DB
}

func NewContainerService(db *gorm.DB) *ContainerService {
	return &ContainerService{db: db}
}

// Create persists a new container record.
func (s *ContainerService) Create(ctx context.Context, c *model.Container) error {
	if c.ContainerNo == "" {
		return fmt.Errorf("container number is required")
	}
	if c.State == "" {
		c.State = model.ContainerStateDraft
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	return nil
}

// GetByID loads a single container.
func (s *ContainerService) GetByID(ctx context.Context, id string) (*model.Container, error) {
	var container model.Container
	err := s.db.WithContext(ctx).First(&container, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContainerNotFound
		}
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	return &container, nil
}

// ListByShipment returns all containers belonging to a shipment.
func (s *ContainerService) ListByShipment(ctx context.Context, shipmentID string) ([]model.Container, error) {
	var containers []model.Container
	err := s.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at DESC").
		Find(&containers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	return containers, nil
}

// SyncFromProvider ingests a batch of containers pushed by a PJT provider.
// Every record is stamped with the provider code and the sync time; the whole
// batch lands in one transaction.
func (s *ContainerService) SyncFromProvider(ctx context.Context, providerCode string, containers []model.Container) (int, error) {
	if len(containers) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range containers {
			c := &containers[i]
			if c.ContainerNo == "" {
				return fmt.Errorf("container number is required on every record")
			}
			c.PJTCode = providerCode
			c.SyncDate = &now
			if c.State == "" {
				c.State = model.ContainerStateDraft
			}
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("failed to sync container %s: %w", c.ContainerNo, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(containers), nil
}

// SetArrived moves a container from draft to arrived.
func (s *ContainerService) SetArrived(ctx context.Context, id string) (*model.Container, error) {
	return s.transition(ctx, id, func(c *model.Container) error {
		if !s.canTransitionToArrived(c.State) {
			return fmt.Errorf("%w: container %s must be in %s state to be set as arrived, got %s",
				ErrInvalidTransition, c.ContainerNo, model.ContainerStateDraft, c.State)
		}
		now := time.Now().UTC()
		c.State = model.ContainerStateArrived
		c.ArrivalTime = &now
		return nil
	})
}

// GateIn moves a container from arrived to gate_in and records the gate-in time.
func (s *ContainerService) GateIn(ctx context.Context, id string) (*model.Container, error) {
	return s.transition(ctx, id, func(c *model.Container) error {
		if !s.canTransitionToGateIn(c.State) {
			return fmt.Errorf("%w: container %s must be in %s state for gate in, got %s",
				ErrInvalidTransition, c.ContainerNo, model.ContainerStateArrived, c.State)
		}
		now := time.Now().UTC()
		c.State = model.ContainerStateGateIn
		c.GateInTime = &now
		return nil
	})
}

// GateOut moves a container from gate_in to gate_out and records the gate-out
// time. The gate-out timestamp can therefore only exist after a gate-in one.
func (s *ContainerService) GateOut(ctx context.Context, id string) (*model.Container, error) {
	return s.transition(ctx, id, func(c *model.Container) error {
		if !s.canTransitionToGateOut(c.State) {
			return fmt.Errorf("%w: container %s must be in %s state for gate out, got %s",
				ErrInvalidTransition, c.ContainerNo, model.ContainerStateGateIn, c.State)
		}
		now := time.Now().UTC()
		c.State = model.ContainerStateGateOut
		c.GateOutTime = &now
		return nil
	})
}

// Complete moves a container from gate_out to completed.
func (s *ContainerService) Complete(ctx context.Context, id string) (*model.Container, error) {
	return s.transition(ctx, id, func(c *model.Container) error {
		if !s.canTransitionToCompleted(c.State) {
			return fmt.Errorf("%w: container %s must be in %s state to be completed, got %s",
				ErrInvalidTransition, c.ContainerNo, model.ContainerStateGateOut, c.State)
		}
		c.State = model.ContainerStateCompleted
		return nil
	})
}

// ResetToDraft returns a container to draft from any state and clears both
// gate timestamps.
func (s *ContainerService) ResetToDraft(ctx context.Context, id string) (*model.Container, error) {
	var container model.Container
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&container, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContainerNotFound
			}
			return fmt.Errorf("failed to load container: %w", err)
		}
		container.State = model.ContainerStateDraft
		container.GateInTime = nil
		container.GateOutTime = nil
		updates := map[string]interface{}{
			"state":         model.ContainerStateDraft,
			"gate_in_time":  nil,
			"gate_out_time": nil,
		}
		if err := tx.Model(&container).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to reset container: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &container, nil
}

// transition loads the container, applies the mutation and saves it within a
// single transaction.
func (s *ContainerService) transition(ctx context.Context, id string, mutate func(*model.Container) error) (*model.Container, error) {
	var container model.Container
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&container, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContainerNotFound
			}
			return fmt.Errorf("failed to load container: %w", err)
		}
		if err := mutate(&container); err != nil {
			return err
		}
		if err := tx.Save(&container).Error; err != nil {
			return fmt.Errorf("failed to save container: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &container, nil
}

func (s *ContainerService) canTransitionToArrived(current model.ContainerState) bool {
	return current == model.ContainerStateDraft
}

func (s *ContainerService) canTransitionToGateIn(current model.ContainerState) bool {
	return current == model.ContainerStateArrived
}

func (s *ContainerService) canTransitionToGateOut(current model.ContainerState) bool {
	return current == model.ContainerStateGateIn
}

func (s *ContainerService) canTransitionToCompleted(current model.ContainerState) bool {
	return current == model.ContainerStateGateOut
}
