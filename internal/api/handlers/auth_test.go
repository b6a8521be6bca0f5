package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewbase/crewbase/internal/api/handlers"
	"github.com/crewbase/crewbase/internal/audit"
	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/crewbase/crewbase/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	r := chi.NewRouter()
	handler := handlers.NewAuthHandler(tc.AuthService)
	r.Post("/auth/register", handler.Register)
	r.Post("/auth/login", handler.Login)

	return r, tc
}

func TestAuthHandler_Register(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("creates organisation and returns token", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/register", map[string]any{
			"orgName":   "Acme",
			"adminName": "A",
			"email":     "a@x.com",
			"password":  "pw123456",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Token        string `json:"token"`
				User         struct{ ID, Name, Email string }
				Organisation struct{ ID, Name string }
			} `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.Token)
		assert.Equal(t, "Acme", resp.Data.Organisation.Name)
		assert.Equal(t, "a@x.com", resp.Data.User.Email)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/register", map[string]any{
			"orgName": "Acme",
			"email":   "b@x.com",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), `"success":false`)
	})

	t.Run("duplicate email is rejected without side effects", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/register", map[string]any{
			"orgName":   "Other Org",
			"adminName": "B",
			"email":     "a@x.com",
			"password":  "pw123456",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "already exists")

		var orgs int64
		tc.DB.Model(&models.Organisation{}).Where("name = ?", "Other Org").Count(&orgs)
		assert.EqualValues(t, 0, orgs)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	register := testutil.UnauthenticatedRequest(t, "POST", "/auth/register", map[string]any{
		"orgName":   "Acme",
		"adminName": "A",
		"email":     "a@x.com",
		"password":  "pw123456",
	})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, register)
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("valid credentials", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", map[string]any{
			"email":    "a@x.com",
			"password": "pw123456",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"token"`)
		assert.EqualValues(t, 1, testutil.CountLogs(t, tc.DB, string(audit.ActionLoginSuccess)))
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		bodies := []map[string]any{
			{"email": "nobody@x.com", "password": "pw123456"},
			{"email": "a@x.com", "password": "wrongpass"},
		}

		var responses []string
		for _, body := range bodies {
			req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", body)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			responses = append(responses, rr.Body.String())
		}
		assert.Equal(t, responses[0], responses[1])
		assert.EqualValues(t, 2, testutil.CountLogs(t, tc.DB, string(audit.ActionLoginFailed)))
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/auth/login", map[string]any{
			"email": "a@x.com",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
