package models

import (
	"time"

	"github.com/google/uuid"
)

var (
	UpdateTypes      = []string{"Clinical Trial", "Research Study", "Treatment Development", "Medical Discovery", "Health Survey", "Drug Study", "Technology", "Other"}
	UpdateCategories = []string{"Treatment", "Mental Health", "Cancer Screening", "CFTR Modulators", "Clinical Trials", "Gene Therapy", "Drug Development", "Community Health", "Other"}
)

type ResearchUpdate struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title                string     `gorm:"not null" json:"title"`
	Description          string     `gorm:"type:text;not null" json:"description"`
	Link                 string     `gorm:"not null" json:"link"`
	UpdateType           string     `gorm:"type:varchar(40);index;not null" json:"updateType"`
	Category             string     `gorm:"type:varchar(40);index;not null" json:"category"`
	Tags                 StringList `gorm:"type:jsonb;default:'[]'" json:"tags"`
	ImageURL             string     `json:"imageUrl"`
	PublishedDate        time.Time  `gorm:"index" json:"publishedDate"`
	IsHighPriority       bool       `gorm:"default:false" json:"isHighPriority"`
	Source               string     `json:"source"`
	ResearchOrganization string     `json:"researchOrganization"`

	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null" json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
