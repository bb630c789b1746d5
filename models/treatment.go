package models

import (
	"time"

	"github.com/google/uuid"
)

// TreatmentPlan is a future session the user intends to take.
type TreatmentPlan struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	ScheduledTime time.Time `gorm:"index;not null" json:"scheduledTime"`
	Duration      int       `gorm:"not null" json:"duration"` // in minutes
	ReminderEmail bool      `gorm:"default:true" json:"reminderEmail"`

	// Set while a reminder is armed for this plan. Pending reminders live in
	// memory only, so after a restart this may point at nothing.
	ReminderID *uuid.UUID `gorm:"type:uuid" json:"reminderId"`

	CurrentSymptoms string `gorm:"type:text" json:"currentSymptoms"`
	EnergyLevel     int    `gorm:"default:5" json:"energyLevel"`
	SleepQuality    int    `gorm:"default:5" json:"sleepQuality"`
	MedicationTaken string `json:"medicationTaken"`
	TreatmentGoals  string `gorm:"type:text" json:"treatmentGoals"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TreatmentSession records a timer session that ran to completion.
type TreatmentSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Duration    int       `gorm:"not null" json:"duration"` // in minutes
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `gorm:"index" json:"completedAt"`
}
