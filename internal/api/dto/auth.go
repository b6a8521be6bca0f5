package dto

import "github.com/crewbase/crewbase/internal/api/validation"

type RegisterRequest struct {
	OrgName   string `json:"orgName"`
	AdminName string `json:"adminName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.OrgName == "" {
		errors["orgName"] = "Organisation name is required"
	}
	if r.AdminName == "" {
		errors["adminName"] = "Admin name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email is invalid"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrganisationDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AuthData struct {
	Token        string          `json:"token"`
	User         UserDTO         `json:"user"`
	Organisation OrganisationDTO `json:"organisation"`
}
