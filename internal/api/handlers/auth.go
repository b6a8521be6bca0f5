package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewbase/crewbase/internal/api/dto"
	"github.com/crewbase/crewbase/internal/api/middleware"
	"github.com/crewbase/crewbase/internal/auth"
)

type AuthHandler struct {
	authService auth.Authenticator
}

func NewAuthHandler(authService auth.Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Err("Invalid request body"))
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "All fields are required: orgName, adminName, email, password",
			Details: details,
		})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		OrgName:   req.OrgName,
		AdminName: req.AdminName,
		Email:     req.Email,
		Password:  req.Password,
	})

	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusBadRequest, dto.Err("User with this email already exists"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Internal server error during registration"))
		return
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{
		Success: true,
		Message: "Organisation and admin user created successfully",
		Data:    authData(resp),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Err("Invalid request body"))
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Email and password are required",
			Details: details,
		})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Uniform message: unknown email and wrong password are
			// indistinguishable to the caller.
			writeJSON(w, http.StatusUnauthorized, dto.Err("Invalid email or password"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.Err("Internal server error during login"))
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Login successful",
		Data:    authData(resp),
	})
}

func authData(resp *auth.AuthResponse) dto.AuthData {
	return dto.AuthData{
		Token: resp.Token,
		User: dto.UserDTO{
			ID:    resp.User.ID.String(),
			Name:  resp.User.Name,
			Email: resp.User.Email,
		},
		Organisation: dto.OrganisationDTO{
			ID:   resp.Organisation.ID.String(),
			Name: resp.Organisation.Name,
		},
	}
}
