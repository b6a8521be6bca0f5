package models

import "github.com/google/uuid"

type User struct {
	Base
	OrganisationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organisation_id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Name           string    `json:"name"`

	// Relationships
	Organisation *Organisation `gorm:"foreignKey:OrganisationID" json:"organisation,omitempty"`
}

func (User) TableName() string {
	return "users"
}
