package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Log is an append-only audit record. Rows are never updated or deleted.
// OrganisationID and UserID are nullable so that pre-auth failures (e.g.
// login attempts against unknown accounts) can still be recorded.
type Log struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrganisationID *uuid.UUID `gorm:"type:uuid;index" json:"organisation_id"`
	UserID         *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Action         string     `gorm:"not null;index" json:"action"`
	Meta           string     `json:"meta"`
	Timestamp      time.Time  `gorm:"index" json:"timestamp"`

	// Relationships
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Organisation *Organisation `gorm:"foreignKey:OrganisationID" json:"organisation,omitempty"`
}

func (Log) TableName() string {
	return "logs"
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	return nil
}
