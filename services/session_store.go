package services

import (
	"context"

	"nebula-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormSessionStore persists completed timer sessions.
type GormSessionStore struct {
	db *gorm.DB
}

var _ SessionStore = (*GormSessionStore)(nil)

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) SaveCompleted(ctx context.Context, cs CompletedSession) error {
	userID, err := uuid.Parse(cs.UserID)
	if err != nil {
		return errors.Wrap(err, "parse user id")
	}
	row := models.TreatmentSession{
		ID:          uuid.New(),
		UserID:      userID,
		Duration:    cs.Duration,
		StartedAt:   cs.StartedAt,
		CompletedAt: cs.CompletedAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}
