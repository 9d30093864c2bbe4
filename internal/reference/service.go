package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no reference code matches a lookup.
var ErrNotFound = errors.New("reference code not found")

// Service provides master data lookups and maintenance.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create validates and stores a new reference code. The (code, category)
// pair is also enforced unique by the database index.
func (s *Service) Create(ctx context.Context, code *Code) error {
	if code == nil {
		return fmt.Errorf("reference code cannot be nil")
	}
	if strings.TrimSpace(code.Code) == "" {
		return fmt.Errorf("code cannot be empty")
	}
	if code.Category <= 0 {
		return fmt.Errorf("category must be positive, got %d", code.Category)
	}
	// Port and country codes are at least two characters on the wire.
	if code.Category == CategoryPelabuhan || code.Category == CategoryNegara {
		if len(code.Code) < 2 {
			return fmt.Errorf("code for category %s must be at least 2 characters long", CategoryName(code.Category))
		}
	}

	if err := s.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("failed to create reference code: %w", err)
	}
	return nil
}

// ListByCategory returns the codes of one category ordered for display.
func (s *Service) ListByCategory(ctx context.Context, category int, activeOnly bool) ([]Code, error) {
	if category <= 0 {
		return nil, fmt.Errorf("category must be positive, got %d", category)
	}

	query := s.db.WithContext(ctx).Where("category = ?", category)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var codes []Code
	if err := query.Order("sequence, code").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list reference codes: %w", err)
	}
	return codes, nil
}

// GetByCode returns the active reference code for a (code, category) pair.
func (s *Service) GetByCode(ctx context.Context, code string, category int) (*Code, error) {
	var result Code
	err := s.db.WithContext(ctx).
		Where("code = ? AND category = ? AND active = ?", code, category, true).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: code %q category %d", ErrNotFound, code, category)
		}
		return nil, fmt.Errorf("failed to look up reference code: %w", err)
	}
	return &result, nil
}

// ToggleActive flips the active flag of a reference code.
func (s *Service) ToggleActive(ctx context.Context, code string, category int) error {
	result := s.db.WithContext(ctx).
		Model(&Code{}).
		Where("code = ? AND category = ?", code, category).
		Update("active", gorm.Expr("NOT active"))
	if result.Error != nil {
		return fmt.Errorf("failed to toggle reference code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: code %q category %d", ErrNotFound, code, category)
	}
	return nil
}
