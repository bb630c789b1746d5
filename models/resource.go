package models

import (
	"time"

	"github.com/google/uuid"
)

var (
	ResourceTypes      = []string{"Video", "Article", "Podcast", "Blog Post", "Conference", "Webinar", "Research Paper", "Guide", "Other"}
	ResourceCategories = []string{"Treatment", "Nutrition", "Mental Health", "Research", "Exercise", "General Information", "Patient Stories", "Medical Updates", "Other"}
)

type EducationalResource struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Link          string     `gorm:"not null" json:"link"`
	Organization  string     `gorm:"not null" json:"organization"`
	ResourceType  string     `gorm:"type:varchar(40);index;not null" json:"resourceType"`
	Category      string     `gorm:"type:varchar(40);index;not null" json:"category"`
	Tags          StringList `gorm:"type:jsonb;default:'[]'" json:"tags"`
	ImageURL      string     `json:"imageUrl"`
	PublishedDate time.Time  `gorm:"index" json:"publishedDate"`
	IsFeatured    bool       `gorm:"default:false" json:"isFeatured"`

	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null" json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
