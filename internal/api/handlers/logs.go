package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/crewbase/crewbase/internal/api/dto"
	"github.com/crewbase/crewbase/internal/api/middleware"
	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogHandler struct {
	db *gorm.DB
}

func NewLogHandler(db *gorm.DB) *LogHandler {
	return &LogHandler{db: db}
}

// List handles GET /logs with optional user, action-substring and date-range
// filters, newest first.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	q := r.URL.Query()

	query := h.db.WithContext(r.Context()).
		Model(&models.Log{}).
		Where("organisation_id = ?", orgID)

	if raw := q.Get("user_id"); raw != "" {
		filterID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.Err("Invalid user_id filter"))
			return
		}
		query = query.Where("user_id = ?", filterID)
	}

	if action := q.Get("action"); action != "" {
		query = query.Where("action LIKE ?", "%"+action+"%")
	}

	if raw := q.Get("start_date"); raw != "" {
		start, err := parseDateParam(raw, false)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.Err("Invalid start_date"))
			return
		}
		query = query.Where("timestamp >= ?", start)
	}

	if raw := q.Get("end_date"); raw != "" {
		end, err := parseDateParam(raw, true)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.Err("Invalid end_date"))
			return
		}
		query = query.Where("timestamp <= ?", end)
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	pagination := dto.PaginationParams{Page: page, Limit: limit}
	pagination.Normalize()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to count logs"))
		return
	}

	var logs []models.Log
	if err := query.
		Preload("User").
		Preload("Organisation").
		Order("timestamp DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&logs).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch logs"))
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(map[string]any{
		"logs": logs,
		"pagination": dto.Pagination{
			CurrentPage:  pagination.Page,
			TotalPages:   pagination.TotalPages(total),
			TotalItems:   total,
			ItemsPerPage: pagination.Limit,
		},
	}))
}

type ActionStat struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type TopUser struct {
	UserID        uuid.UUID `json:"user_id"`
	ActivityCount int64     `json:"activity_count"`
	Name          string    `json:"name" gorm:"-"`
	Email         string    `json:"email" gorm:"-"`
}

// Stats handles GET /logs/stats: per-action counts, activity over the last
// seven days, and the five most active users, all tenant-scoped.
func (h *LogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	db := h.db.WithContext(r.Context())

	var actionStats []ActionStat
	if err := db.Model(&models.Log{}).
		Select("action, COUNT(id) AS count").
		Where("organisation_id = ?", orgID).
		Group("action").
		Order("count DESC").
		Scan(&actionStats).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch log stats"))
		return
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	var recentActivity int64
	if err := db.Model(&models.Log{}).
		Where("organisation_id = ? AND timestamp >= ?", orgID, sevenDaysAgo).
		Count(&recentActivity).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch log stats"))
		return
	}

	// Anonymous rows (null user_id) count toward the totals above but are
	// excluded from the per-user grouping.
	var topUsers []TopUser
	if err := db.Model(&models.Log{}).
		Select("user_id, COUNT(id) AS activity_count").
		Where("organisation_id = ? AND user_id IS NOT NULL", orgID).
		Group("user_id").
		Order("activity_count DESC").
		Limit(5).
		Scan(&topUsers).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch log stats"))
		return
	}

	if len(topUsers) > 0 {
		ids := make([]uuid.UUID, len(topUsers))
		for i, tu := range topUsers {
			ids[i] = tu.UserID
		}
		var users []models.User
		if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch log stats"))
			return
		}
		byID := make(map[uuid.UUID]models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}
		for i := range topUsers {
			if u, ok := byID[topUsers[i].UserID]; ok {
				topUsers[i].Name = u.Name
				topUsers[i].Email = u.Email
			}
		}
	}

	writeJSON(w, http.StatusOK, dto.OK(map[string]any{
		"actionStats":    actionStats,
		"recentActivity": recentActivity,
		"topUsers":       topUsers,
	}))
}

// parseDateParam accepts either a bare date or an RFC3339 timestamp. A bare
// end date means end-of-day (23:59:59.999), keeping the range inclusive.
func parseDateParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
