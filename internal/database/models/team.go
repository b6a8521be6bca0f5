package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	Base
	OrganisationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organisation_id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `json:"description"`

	// Relationships
	Organisation *Organisation `gorm:"foreignKey:OrganisationID" json:"organisation,omitempty"`
	Employees    []Employee    `gorm:"many2many:employee_teams" json:"employees,omitempty"`
}

func (Team) TableName() string {
	return "teams"
}

// EmployeeTeam is the join record between employees and teams. The composite
// primary key guarantees at most one row per (employee, team) pair.
type EmployeeTeam struct {
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"employee_id"`
	TeamID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"team_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

func (EmployeeTeam) TableName() string {
	return "employee_teams"
}

func (et *EmployeeTeam) BeforeCreate(tx *gorm.DB) error {
	if et.AssignedAt.IsZero() {
		et.AssignedAt = time.Now()
	}
	return nil
}
