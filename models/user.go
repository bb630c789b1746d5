package models

import (
	"nebula-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	AgeGroups     = []string{"Under 13", "13–18", "18+"}
	MutationTypes = []string{"abc", "xyz", "I don't know", "I don't want to tell"}
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`

	AgeGroup       string     `gorm:"type:varchar(20);not null" json:"ageGroup"`
	Interests      StringList `gorm:"type:jsonb;default:'[]'" json:"interests"`
	TypeOfMutation string     `gorm:"type:varchar(40);not null" json:"typeOfMutation"`
	TermsAccepted  bool       `gorm:"not null" json:"termsAccepted"`

	IsProfilePublic bool   `gorm:"default:true" json:"isProfilePublic"`
	Avatar          string `json:"avatar"`

	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
