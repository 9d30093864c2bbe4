// Package audit records human-readable notes against domain records.
// Exchange operations post a note for every send and poll outcome so the
// trail survives state changes.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is one audit entry attached to a domain record.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`

	Entity   string    `gorm:"type:varchar(50);column:entity;not null;index:idx_audit_entity" json:"entity"`
	EntityID uuid.UUID `gorm:"type:uuid;column:entity_id;not null;index:idx_audit_entity" json:"entityId"`
	Body     string    `gorm:"type:text;column:body;not null" json:"body"`
}

func (Note) TableName() string {
	return "audit_notes"
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (n *Note) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	n.CreatedAt = time.Now().UTC()
	return
}

// Recorder posts audit notes. Posting is best effort inside exchange flows:
// a failed note is logged and never fails the operation that produced it.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Post writes a note for the entity within the caller's transaction.
func (r *Recorder) Post(ctx context.Context, tx *gorm.DB, entity string, entityID uuid.UUID, format string, args ...interface{}) {
	note := Note{
		Entity:   entity,
		EntityID: entityID,
		Body:     fmt.Sprintf(format, args...),
	}
	if err := tx.WithContext(ctx).Create(&note).Error; err != nil {
		slog.Error("Failed to post audit note", "entity", entity, "entityId", entityID, "error", err)
	}
}

// PostDirect writes a note outside any transaction, for use when the
// surrounding transaction has already rolled back.
func (r *Recorder) PostDirect(ctx context.Context, entity string, entityID uuid.UUID, format string, args ...interface{}) {
	r.Post(ctx, r.db, entity, entityID, format, args...)
}

// ListByEntity returns the notes for one record, newest first.
func (r *Recorder) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]Note, error) {
	var notes []Note
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit notes: %w", err)
	}
	return notes, nil
}
