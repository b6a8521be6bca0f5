package audit

import "github.com/google/uuid"

// Action is the closed vocabulary of auditable events. Handlers and services
// record these constants only; free-text actions never enter the log.
type Action string

const (
	ActionOrganisationRegistered Action = "ORGANISATION_REGISTERED"
	ActionLoginSuccess           Action = "USER_LOGIN_SUCCESS"
	ActionLoginFailed            Action = "USER_LOGIN_FAILED"
	ActionEmployeeCreated        Action = "EMPLOYEE_CREATED"
	ActionEmployeeUpdated        Action = "EMPLOYEE_UPDATED"
	ActionEmployeeDeleted        Action = "EMPLOYEE_DELETED"
	ActionTeamCreated            Action = "TEAM_CREATED"
	ActionTeamUpdated            Action = "TEAM_UPDATED"
	ActionTeamDeleted            Action = "TEAM_DELETED"
	ActionEmployeesAssigned      Action = "EMPLOYEES_ASSIGNED_TO_TEAM"
	ActionEmployeeUnassigned     Action = "EMPLOYEE_UNASSIGNED_FROM_TEAM"
)

// Typed meta payloads, one per action kind. They are serialized to the Log
// row's meta column by the recorder.

type RegistrationMeta struct {
	OrganisationID   uuid.UUID `json:"organisation_id"`
	OrganisationName string    `json:"organisation_name"`
	AdminEmail       string    `json:"admin_email"`
}

type LoginSuccessMeta struct {
	Email     string `json:"email"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type LoginFailureMeta struct {
	AttemptedEmail string `json:"attempted_email"`
	Reason         string `json:"reason"`
	IP             string `json:"ip,omitempty"`
}

type EmployeeMeta struct {
	EmployeeID   uuid.UUID `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
}

type EmployeeUpdateMeta struct {
	EmployeeID uuid.UUID      `json:"employee_id"`
	Updates    map[string]any `json:"updates"`
}

type TeamMeta struct {
	TeamID   uuid.UUID `json:"team_id"`
	TeamName string    `json:"team_name"`
}

type TeamUpdateMeta struct {
	TeamID  uuid.UUID      `json:"team_id"`
	Updates map[string]any `json:"updates"`
}

type AssignmentMeta struct {
	TeamID      uuid.UUID   `json:"team_id"`
	EmployeeIDs []uuid.UUID `json:"employee_ids"`
}

type UnassignmentMeta struct {
	TeamID     uuid.UUID `json:"team_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
}
