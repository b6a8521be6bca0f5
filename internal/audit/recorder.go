package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sink receives audit events. A failed write must never abort the business
// operation that triggered it, so Record has no error return.
type Sink interface {
	Record(ctx context.Context, orgID, userID *uuid.UUID, action Action, meta any)
}

type Recorder struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecorder(db *gorm.DB, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record appends one immutable Log row. Serialization or insert failures are
// surfaced to operational logs only.
func (r *Recorder) Record(ctx context.Context, orgID, userID *uuid.UUID, action Action, meta any) {
	entry := models.Log{
		OrganisationID: orgID,
		UserID:         userID,
		Action:         string(action),
		Meta:           serializeMeta(meta, r.logger),
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.logger.Error("failed to write audit log",
			"action", action,
			"error", err,
		)
	}
}

func serializeMeta(meta any, logger *slog.Logger) string {
	switch m := meta.(type) {
	case nil:
		return "{}"
	case string:
		// Already serialized by the caller
		return m
	default:
		raw, err := json.Marshal(meta)
		if err != nil {
			logger.Error("failed to serialize audit meta", "error", err)
			return "{}"
		}
		return string(raw)
	}
}

var _ Sink = (*Recorder)(nil)
