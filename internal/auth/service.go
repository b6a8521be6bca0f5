package auth

import (
	"context"
	"errors"

	"github.com/crewbase/crewbase/internal/audit"
	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	db       *gorm.DB
	jwt      *JWTService
	recorder audit.Sink
}

func NewService(db *gorm.DB, jwt *JWTService, recorder audit.Sink) *Service {
	return &Service{db: db, jwt: jwt, recorder: recorder}
}

type RegisterInput struct {
	OrgName   string
	AdminName string
	Email     string
	Password  string
}

type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

type AuthResponse struct {
	Token        string               `json:"token"`
	User         *models.User         `json:"user"`
	Organisation *models.Organisation `json:"organisation"`
}

// Register creates an organisation and its first admin user in one
// transaction. Email uniqueness is global across organisations.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	org := models.Organisation{
		Name: input.OrgName,
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		user = models.User{
			OrganisationID: org.ID,
			Email:          input.Email,
			PasswordHash:   hash,
			Name:           input.AdminName,
		}

		return tx.Create(&user).Error
	})

	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, &org.ID, &user.ID, audit.ActionOrganisationRegistered, audit.RegistrationMeta{
		OrganisationID:   org.ID,
		OrganisationName: org.Name,
		AdminEmail:       user.Email,
	})

	token, err := s.jwt.GenerateToken(user.ID, org.ID)
	if err != nil {
		return nil, err
	}

	user.Organisation = &org

	return &AuthResponse{
		Token:        token,
		User:         &user,
		Organisation: &org,
	}, nil
}

// Login verifies credentials and issues a fresh session token. Every attempt
// is audited; unknown-user and wrong-password failures are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organisation").
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recorder.Record(ctx, nil, nil, audit.ActionLoginFailed, audit.LoginFailureMeta{
				AttemptedEmail: input.Email,
				Reason:         "user not found",
				IP:             input.IP,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		s.recorder.Record(ctx, &user.OrganisationID, &user.ID, audit.ActionLoginFailed, audit.LoginFailureMeta{
			AttemptedEmail: input.Email,
			Reason:         "invalid password",
			IP:             input.IP,
		})
		return nil, ErrInvalidCredentials
	}

	s.recorder.Record(ctx, &user.OrganisationID, &user.ID, audit.ActionLoginSuccess, audit.LoginSuccessMeta{
		Email:     user.Email,
		IP:        input.IP,
		UserAgent: input.UserAgent,
	})

	token, err := s.jwt.GenerateToken(user.ID, user.OrganisationID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:        token,
		User:         &user,
		Organisation: user.Organisation,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organisation").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
