package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crewbase/crewbase/internal/audit"
	"github.com/crewbase/crewbase/internal/auth"
	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := db.SetupJoinTable(&models.Employee{}, "Teams", &models.EmployeeTeam{}); err != nil {
		t.Fatalf("failed to set up join table: %v", err)
	}
	if err := db.SetupJoinTable(&models.Team{}, "Employees", &models.EmployeeTeam{}); err != nil {
		t.Fatalf("failed to set up join table: %v", err)
	}

	err = db.AutoMigrate(
		&models.Organisation{},
		&models.User{},
		&models.Employee{},
		&models.Team{},
		&models.EmployeeTeam{},
		&models.Log{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewTestRecorder creates an audit recorder writing to the given database
// with a discarding logger.
func NewTestRecorder(db *gorm.DB) *audit.Recorder {
	return audit.NewRecorder(db, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

// CreateTestOrg creates a test organisation
func CreateTestOrg(t *testing.T, db *gorm.DB) *models.Organisation {
	t.Helper()

	org := &models.Organisation{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name: "Test Organisation",
	}

	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organisation: %v", err)
	}

	return org
}

// CreateTestUser creates a test user under the given organisation
func CreateTestUser(t *testing.T, db *gorm.DB, org *models.Organisation) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganisationID: org.ID,
		Email:          "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:   hash,
		Name:           "Test User",
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Organisation = org
	return user
}

// CreateTestEmployee creates a test employee in the given organisation
func CreateTestEmployee(t *testing.T, db *gorm.DB, orgID uuid.UUID, firstName, lastName string) *models.Employee {
	t.Helper()

	employee := &models.Employee{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganisationID: orgID,
		FirstName:      firstName,
		LastName:       lastName,
	}

	if err := db.Create(employee).Error; err != nil {
		t.Fatalf("failed to create test employee: %v", err)
	}

	return employee
}

// CreateTestTeam creates a test team in the given organisation
func CreateTestTeam(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string) *models.Team {
	t.Helper()

	team := &models.Team{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganisationID: orgID,
		Name:           name,
	}

	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create test team: %v", err)
	}

	return team
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 8*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.OrganisationID)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// CountLogs returns the number of audit log rows for the given action.
func CountLogs(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Log{}).Where("action = ?", action).Count(&count).Error; err != nil {
		t.Fatalf("failed to count logs: %v", err)
	}
	return count
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB          *gorm.DB
	JWTService  *auth.JWTService
	AuthService *auth.Service
	Recorder    *audit.Recorder
	Org         *models.Organisation
	User        *models.User
	Token       string
}

// NewTestContext creates a complete test setup with DB, org, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	recorder := NewTestRecorder(db)
	authService := auth.NewService(db, jwtService, recorder)
	org := CreateTestOrg(t, db)
	user := CreateTestUser(t, db, org)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:          db,
		JWTService:  jwtService,
		AuthService: authService,
		Recorder:    recorder,
		Org:         org,
		User:        user,
		Token:       token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
