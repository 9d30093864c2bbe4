package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dandeat/barkir-core/internal/pjt"
)

// ErrUnknownAPIKey is returned when no active provider owns the presented key.
var ErrUnknownAPIKey = errors.New("unknown API key")

// Service resolves sync API keys to PJT providers.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetProviderByAPIKey returns the active provider that owns the key.
func (s *Service) GetProviderByAPIKey(ctx context.Context, apiKey string) (*pjt.Provider, error) {
	if apiKey == "" {
		return nil, ErrUnknownAPIKey
	}

	var provider pjt.Provider
	err := s.db.WithContext(ctx).
		Where("sync_api_key = ? AND active = ?", apiKey, true).
		First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAPIKey
		}
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}
	return &provider, nil
}
