package services

import (
	"context"

	"nebula-backend/models"

	"gorm.io/gorm"
)

// GormDeliveryLog writes delivery outcomes to the reminder_logs table.
type GormDeliveryLog struct {
	db *gorm.DB
}

var _ DeliveryLog = (*GormDeliveryLog)(nil)

func NewGormDeliveryLog(db *gorm.DB) *GormDeliveryLog {
	return &GormDeliveryLog{db: db}
}

func (l *GormDeliveryLog) Record(ctx context.Context, entry *models.ReminderLog) error {
	return l.db.WithContext(ctx).Create(entry).Error
}

// RecentForUser returns the latest delivery attempts for email, newest first.
func (l *GormDeliveryLog) RecentForUser(ctx context.Context, email string, limit int) ([]models.ReminderLog, error) {
	var logs []models.ReminderLog
	err := l.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("sent_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
