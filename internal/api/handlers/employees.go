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
)

type EmployeeHandler struct {
	db       *gorm.DB
	recorder audit.Sink
}

func NewEmployeeHandler(db *gorm.DB, recorder audit.Sink) *EmployeeHandler {
	return &EmployeeHandler{db: db, recorder: recorder}
}

type CreateEmployeeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (r CreateEmployeeRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.FirstName == "" {
		errors["first_name"] = "First name is required"
	}
	if r.LastName == "" {
		errors["last_name"] = "Last name is required"
	}
	return errors
}

// UpdateEmployeeRequest uses pointers to distinguish omitted fields from
// explicit values: nil keeps the prior value, an empty string clears
// optional fields and is rejected for required ones.
type UpdateEmployeeRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

func (r UpdateEmployeeRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.FirstName != nil && *r.FirstName == "" {
		errors["first_name"] = "First name cannot be empty"
	}
	if r.LastName != nil && *r.LastName == "" {
		errors["last_name"] = "Last name cannot be empty"
	}
	return errors
}

// List handles GET /employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())

	var employees []models.Employee
	if err := h.db.WithContext(r.Context()).
		Preload("Teams").
		Where("organisation_id = ?", orgID).
		Order("created_at DESC").
		Find(&employees).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch employees"))
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(employees))
}

// Get handles GET /employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())

	// A malformed id behaves exactly like a missing one.
	employeeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Employee not found"))
		return
	}

	var employee models.Employee
	if err := h.db.WithContext(r.Context()).
		Preload("Teams").
		Where("id = ? AND organisation_id = ?", employeeID, orgID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.Err("Employee not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to fetch employee"))
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(employee))
}

// Create handles POST /employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Err("Invalid request body"))
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "First name and last name are required",
			Details: details,
		})
		return
	}

	employee := models.Employee{
		OrganisationID: orgID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
	}

	if err := h.db.WithContext(r.Context()).Create(&employee).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to create employee"))
		return
	}

	h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionEmployeeCreated, audit.EmployeeMeta{
		EmployeeID:   employee.ID,
		EmployeeName: employee.FirstName + " " + employee.LastName,
	})

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{
		Success: true,
		Message: "Employee created successfully",
		Data:    employee,
	})
}

// Update handles PUT /employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	employeeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Employee not found"))
		return
	}

	var req UpdateEmployeeRequest
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

	updates := make(map[string]any)
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(&employee).Updates(updates).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to update employee"))
			return
		}

		h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionEmployeeUpdated, audit.EmployeeUpdateMeta{
			EmployeeID: employee.ID,
			Updates:    updates,
		})
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Employee updated successfully",
		Data:    employee,
	})
}

// Delete handles DELETE /employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganisationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	employeeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Err("Employee not found"))
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

	// Snapshot the identifying fields before the row disappears.
	h.recorder.Record(r.Context(), &orgID, &userID, audit.ActionEmployeeDeleted, audit.EmployeeMeta{
		EmployeeID:   employee.ID,
		EmployeeName: employee.FirstName + " " + employee.LastName,
	})

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.EmployeeTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(&employee).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.Err("Failed to delete employee"))
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Employee deleted successfully",
	})
}
