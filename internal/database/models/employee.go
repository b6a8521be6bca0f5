package models

import "github.com/google/uuid"

type Employee struct {
	Base
	OrganisationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organisation_id"`
	FirstName      string    `gorm:"not null" json:"first_name"`
	LastName       string    `gorm:"not null" json:"last_name"`
	// Employee email carries no uniqueness constraint, unlike User.Email.
	Email string `json:"email"`
	Phone string `json:"phone"`

	// Relationships
	Organisation *Organisation `gorm:"foreignKey:OrganisationID" json:"organisation,omitempty"`
	Teams        []Team        `gorm:"many2many:employee_teams" json:"teams,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}
