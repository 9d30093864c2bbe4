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
	// ErrKemasanNotFound is returned when no kemasan item matches the lookup.
	ErrKemasanNotFound = errors.New("kemasan item not found")
	// ErrUnknownKemasanState is returned when a transition targets a state outside the enum.
	ErrUnknownKemasanState = errors.New("unknown kemasan state")
)

// KemasanService manages packaging items. The handling states are freely
// settable between each other; entering a gate state stamps the matching
// timestamp on the item.
type KemasanService struct {
	db *gorm.DB
}

func NewKemasanService(db *gorm.DB) *KemasanService {
	return &KemasanService{db: db}
}

// Create persists a new kemasan item.
func (s *KemasanService) Create(ctx context.Context, k *model.Kemasan) error {
	if k.Name == "" {
		return fmt.Errorf("kemasan number is required")
	}
	if k.SenderName == "" || k.ReceiverName == "" {
		return fmt.Errorf("sender and receiver names are required")
	}
	if k.State == "" {
		k.State = model.KemasanStateDraft
	}
	if err := s.db.WithContext(ctx).Create(k).Error; err != nil {
		return fmt.Errorf("failed to create kemasan item: %w", err)
	}
	return nil
}

// GetByID loads a single kemasan item.
func (s *KemasanService) GetByID(ctx context.Context, id string) (*model.Kemasan, error) {
	var kemasan model.Kemasan
	err := s.db.WithContext(ctx).First(&kemasan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKemasanNotFound
		}
		return nil, fmt.Errorf("failed to get kemasan item: %w", err)
	}
	return &kemasan, nil
}

// ListByContainer returns all kemasan items inside a container.
func (s *KemasanService) ListByContainer(ctx context.Context, containerID string) ([]model.Kemasan, error) {
	var items []model.Kemasan
	err := s.db.WithContext(ctx).
		Where("container_id = ?", containerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list kemasan items: %w", err)
	}
	return items, nil
}

// Transition moves a kemasan item into the target state. Entering `in` or
// `out` records the corresponding gate time.
func (s *KemasanService) Transition(ctx context.Context, id string, target model.KemasanState) (*model.Kemasan, error) {
	if !s.isKnownState(target) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKemasanState, target)
	}

	var kemasan model.Kemasan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&kemasan, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrKemasanNotFound
			}
			return fmt.Errorf("failed to load kemasan item: %w", err)
		}

		kemasan.State = target
		switch target {
		case model.KemasanStateIn:
			now := time.Now().UTC()
			kemasan.GateInTime = &now
		case model.KemasanStateOut:
			now := time.Now().UTC()
			kemasan.GateOutTime = &now
		}

		if err := tx.Save(&kemasan).Error; err != nil {
			return fmt.Errorf("failed to save kemasan item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &kemasan, nil
}

func (s *KemasanService) isKnownState(state model.KemasanState) bool {
	for _, known := range model.KnownKemasanStates {
		if state == known {
			return true
		}
	}
	return false
}
