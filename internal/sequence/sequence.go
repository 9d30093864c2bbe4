// Package sequence provides database-backed reference number sequences.
// Exchange records draw their globally unique reference numbers from here;
// the row lock makes concurrent draws within separate transactions safe.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownSequence is returned when no sequence row exists for the code.
var ErrUnknownSequence = errors.New("unknown sequence code")

// Sequence is one named counter.
type Sequence struct {
	ID         uint   `gorm:"column:id;primaryKey" json:"id"`
	Code       string `gorm:"type:varchar(50);column:code;not null;uniqueIndex" json:"code"`
	Prefix     string `gorm:"type:varchar(20);column:prefix" json:"prefix"`
	Padding    int    `gorm:"column:padding;not null;default:6" json:"padding"`
	NextNumber int64  `gorm:"column:next_number;not null;default:1" json:"nextNumber"`
}

func (Sequence) TableName() string {
	return "sequences"
}

// Service issues formatted sequence numbers.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NextByCode draws the next number for the given sequence code inside the
// caller's transaction. The sequence row is locked for the duration of the
// transaction so two callers can never draw the same number.
func (s *Service) NextByCode(ctx context.Context, tx *gorm.DB, code string) (string, error) {
	var seq Sequence
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrUnknownSequence, code)
		}
		return "", fmt.Errorf("failed to load sequence %s: %w", code, err)
	}

	number := seq.NextNumber
	if err := tx.WithContext(ctx).Model(&Sequence{}).
		Where("id = ?", seq.ID).
		Update("next_number", number+1).Error; err != nil {
		return "", fmt.Errorf("failed to advance sequence %s: %w", code, err)
	}

	return fmt.Sprintf("%s%0*d", seq.Prefix, seq.Padding, number), nil
}

// Seed inserts the sequence rows the exchanges depend on, skipping any that
// already exist.
func (s *Service) Seed(ctx context.Context) error {
	defaults := []Sequence{
		{Code: "coco.exchange", Prefix: "COCO", Padding: 6, NextNumber: 1},
		{Code: "plp.request", Prefix: "PLP", Padding: 6, NextNumber: 1},
	}
	for _, seq := range defaults {
		err := s.db.WithContext(ctx).
			Where(Sequence{Code: seq.Code}).
			FirstOrCreate(&seq).Error
		if err != nil {
			return fmt.Errorf("failed to seed sequence %s: %w", seq.Code, err)
		}
	}
	return nil
}
