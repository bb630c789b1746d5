package models

import (
	"time"

	"github.com/google/uuid"
)

var (
	EventTypes    = []string{"Webinar", "Workshop", "Support Group", "Fundraiser", "Awareness Campaign", "Conference", "Social Gathering", "Other"}
	EventStatuses = []string{"Upcoming", "Ongoing", "Completed", "Cancelled"}
)

type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	EventType   string     `gorm:"type:varchar(40);index;not null" json:"eventType"`
	StartDate   time.Time  `gorm:"index;not null" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Location    string     `gorm:"not null" json:"location"`
	IsVirtual   bool       `gorm:"default:false" json:"isVirtual"`
	VirtualLink string     `json:"virtualLink"`

	OrganizerName         string `gorm:"not null" json:"organizerName"`
	OrganizerEmail        string `gorm:"not null" json:"organizerEmail"`
	OrganizerOrganization string `json:"organizerOrganization"`

	// nil means unlimited
	MaxAttendees *int       `json:"maxAttendees"`
	Tags         StringList `gorm:"type:jsonb;default:'[]'" json:"tags"`
	ImageURL     string     `json:"imageUrl"`
	Status       string     `gorm:"type:varchar(20);index;default:'Upcoming'" json:"status"`

	Attendees []EventAttendee `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"registeredAttendees"`

	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null" json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type EventAttendee struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_event_user;not null" json:"eventId"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_event_user;not null" json:"userId"`
	UserName     string    `json:"userName"`
	UserEmail    string    `json:"userEmail"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// IsFull reports whether the attendee limit has been reached.
func (e *Event) IsFull() bool {
	return e.MaxAttendees != nil && len(e.Attendees) >= *e.MaxAttendees
}

func (e *Event) HasAttendee(userID uuid.UUID) bool {
	for _, a := range e.Attendees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
