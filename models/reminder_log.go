// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderLog records the outcome of one reminder delivery attempt.
type ReminderLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReminderID    uuid.UUID `gorm:"type:uuid;index;not null" json:"reminderId"`
	UserEmail     string    `gorm:"index;not null" json:"userEmail"`
	TreatmentTime time.Time `json:"treatmentTime"`
	Duration      int       `json:"duration"`
	Status        string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage  string    `gorm:"type:text" json:"errorMessage,omitempty"`
	Channel       string    `gorm:"type:varchar(20)" json:"channel"` // email, sms
	SentAt        time.Time `json:"sentAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
