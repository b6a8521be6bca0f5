package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewbase/crewbase/internal/api/dto"
	"github.com/crewbase/crewbase/internal/api/middleware"
	"github.com/crewbase/crewbase/internal/audit"
	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamHandler struct {
	db       *gorm.DB
	recorder audit.Sink
}

func NewTeamHandler(db *gorm.DB, recorder audit.Sink) *TeamHandler {
	return &TeamHandler{db: db, recorder: recorder}
}

type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r CreateTeamRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Team name is required"
	}
	return errors
}

type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r UpdateTeamRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Team name cannot be empty"
	}
	return errors
}

type AssignRequest struct {
	EmployeeID  string   `json:"employeeId,omitempty"`
	EmployeeIDs []string `json:"employeeIds,omitempty"`
}

type UnassignRequest struct {
	EmployeeID string `json:"employeeId"`
}

// List handles GET /teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())

	var teams []models.Team
	if err := h.db.WithContext(r.Context()).
		Preload("Employees").
		Where("organisation_id = ?", orgID).
		Order("created_at DESC").
		Find(&teams).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch teams"))
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(teams))
}

// Get handles GET /teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).
		Preload("Employees").
		Where("id = ? AND organisation_id = ?", teamID, orgID).
		First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch team"))
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(team))
}

// Create handles POST /teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Err("Invalid request body"))
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Team name is required",
			Details: details,
		})
		return
	}

	team := models.Team{
		OrganisationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
	}

	if err := h.db.WithContext(r.Context()).Create(&team).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to create team"))
		return
	}

	h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionTeamCreated, audit.TeamMeta{
		TeamID:   team.ID,
		TeamName: team.Name,
	})

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{
		Success: true,
		Message: "Team created successfully",
		Data:    team,
	})
}

// Update handles PUT /teams/{id}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
		return
	}

	var req UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Err("Invalid request body"))
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: details,
		})
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND organisation_id = ?", teamID, orgID).
		First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch team"))
		return
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(&team).Updates(updates).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to update team"))
			return
		}

		h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionTeamUpdated, audit.TeamUpdateMeta{
			TeamID:  team.ID,
			Updates: updates,
		})
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Team updated successfully",
		Data:    team,
	})
}

// Delete handles DELETE /teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND organisation_id = ?", teamID, orgID).
		First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch team"))
		return
	}

	h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionTeamDeleted, audit.TeamMeta{
		TeamID:   team.ID,
		TeamName: team.Name,
	})

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.EmployeeTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to delete team"))
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Team deleted successfully",
	})
}

// Assign handles POST /teams/{teamId}/assign. The call is all-or-nothing:
// every employee id must resolve within the caller's organisation before any
// assignment is written. Re-assigning an existing pair is a no-op.
func (h *TeamHandler) Assign(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "teamId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Err("Invalid request body"))
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND organisation_id = ?", teamID, orgID).
		First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch team"))
		return
	}

	rawIDs := req.EmployeeIDs
	if len(rawIDs) == 0 && req.EmployeeID != "" {
		rawIDs = []string{req.EmployeeID}
	}
	if len(rawIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, dto.Err("No employee IDs provided"))
		return
	}

	employeeIDs := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusNotFound, dto.Err("One or more employees not found"))
			return
		}
		employeeIDs = append(employeeIDs, id)
	}

	var employees []models.Employee
	if err := h.db.WithContext(r.Context()).
		Where("id IN ? AND organisation_id = ?", employeeIDs, orgID).
		Find(&employees).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch employees"))
		return
	}
	if len(employees) != len(employeeIDs) {
		writeJSON(w, http.StatusNotFound, dto.Err("One or more employees not found"))
		return
	}

	for _, employeeID := range employeeIDs {
		assignment := models.EmployeeTeam{
			EmployeeID: employeeID,
			TeamID:     team.ID,
		}
		if err := h.db.WithContext(r.Context()).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&assignment).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to assign employee to team"))
			return
		}
	}

	// One audit entry per call, not per pair.
	h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionEmployeesAssigned, audit.AssignmentMeta{
		TeamID:      team.ID,
		EmployeeIDs: employeeIDs,
	})

	assigned := make([]map[string]any, len(employees))
	for i, emp := range employees {
		assigned[i] = map[string]any{
			"id":   emp.ID,
			"name": emp.FirstName + " " + emp.LastName,
		}
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Employees assigned to team successfully",
		Data: map[string]any{
			"team":               team.Name,
			"assigned_employees": assigned,
		},
	})
}

// Unassign handles DELETE /teams/{teamId}/unassign. Removing a pair that was
// never assigned is a 404 and leaves no audit entry.
func (h *TeamHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "teamId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
		return
	}

	var req UnassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Err("Invalid request body"))
		return
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Employee not found"))
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND organisation_id = ?", teamID, orgID).
		First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.Err("Team not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch team"))
		return
	}

	var employee models.Employee
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND organisation_id = ?", employeeID, orgID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.Err("Employee not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch employee"))
		return
	}

	result := h.db.WithContext(r.Context()).
		Where("employee_id = ? AND team_id = ?", employee.ID, team.ID).
		Delete(&models.EmployeeTeam{})
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to unassign employee from team"))
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.Err("Employee is not assigned to this team"))
		return
	}

	h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionEmployeeUnassigned, audit.UnassignmentMeta{
		TeamID:     team.ID,
		EmployeeID: employee.ID,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Employee unassigned from team successfully",
	})
}
