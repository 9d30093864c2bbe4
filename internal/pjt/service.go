package pjt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no provider matches the lookup.
	ErrNotFound = errors.New("pjt provider not found")
	// ErrDuplicateCode is returned when a provider code is already registered.
	ErrDuplicateCode = errors.New("pjt provider code already exists")
)

// Service manages PJT provider master data.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create registers a new provider. The code is unique across the table.
func (s *Service) Create(ctx context.Context, p *Provider) error {
	p.Code = strings.TrimSpace(p.Code)
	if p.Code == "" {
		return fmt.Errorf("provider code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("provider name is required")
	}
	if strings.TrimSpace(p.NotifierID) == "" {
		return fmt.Errorf("notifier id is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Provider{}).Where("code = ?", p.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check provider code: %w", err)
		}
		if count > 0 {
			return ErrDuplicateCode
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create provider: %w", err)
		}
		return nil
	})
}

// Update applies mutable fields to an existing provider.
func (s *Service) Update(ctx context.Context, id string, updates map[string]interface{}) (*Provider, error) {
	var provider Provider
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&provider, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load provider: %w", err)
		}
		delete(updates, "id")
		delete(updates, "code")
		delete(updates, "created_at")
		if err := tx.Model(&provider).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update provider: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetByCode returns an active provider by its unique code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Provider, error) {
	var provider Provider
	err := s.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

// List returns providers, optionally including inactive ones.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Provider, error) {
	var providers []Provider
	q := s.db.WithContext(ctx).Order("code ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}
