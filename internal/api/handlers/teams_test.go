package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewbase/crewbase/internal/api/handlers"
	"github.com/crewbase/crewbase/internal/api/middleware"
	"github.com/crewbase/crewbase/internal/audit"
	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/crewbase/crewbase/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTeamTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	r := chi.NewRouter()
	r.Use(middleware.Auth(tc.JWTService, tc.AuthService))

	teamHandler := handlers.NewTeamHandler(tc.DB, tc.Recorder)
	employeeHandler := handlers.NewEmployeeHandler(tc.DB, tc.Recorder)
	r.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Post("/", teamHandler.Create)
		r.Get("/{id}", teamHandler.Get)
		r.Put("/{id}", teamHandler.Update)
		r.Delete("/{id}", teamHandler.Delete)
		r.Post("/{teamId}/assign", teamHandler.Assign)
		r.Delete("/{teamId}/unassign", teamHandler.Unassign)
	})
	r.Get("/employees/{id}", employeeHandler.Get)

	return r, tc
}

func countAssignments(t *testing.T, tc *testutil.TestSetup, employeeID, teamID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, tc.DB.Model(&models.EmployeeTeam{}).
		Where("employee_id = ? AND team_id = ?", employeeID, teamID).
		Count(&count).Error)
	return count
}

func TestTeamHandler_Create(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	t.Run("valid team", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/teams", map[string]any{
			"name":        "Engineering",
			"description": "Builds the product",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), "Engineering")
		assert.EqualValues(t, 1, testutil.CountLogs(t, tc.DB, string(audit.ActionTeamCreated)))
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/teams", map[string]any{
			"description": "No name",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTeamHandler_Update(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Engineering")
	require.NoError(t, tc.DB.Model(team).Update("description", "Old blurb").Error)

	t.Run("renames without touching description", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/teams/"+team.ID.String(), map[string]any{
			"name": "Platform",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.Team
		require.NoError(t, tc.DB.First(&updated, team.ID).Error)
		assert.Equal(t, "Platform", updated.Name)
		assert.Equal(t, "Old blurb", updated.Description)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/teams/"+team.ID.String(), map[string]any{
			"name": "",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty description clears it", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/teams/"+team.ID.String(), map[string]any{
			"description": "",
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.Team
		require.NoError(t, tc.DB.First(&updated, team.ID).Error)
		assert.Equal(t, "", updated.Description)
	})
}

func TestTeamHandler_Assign(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	t.Run("assigns multiple employees", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Engineering")
		e1 := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Bo", "Lee")
		e2 := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Ada", "Ng")

		req := testutil.AuthenticatedRequest(t, "POST", "/teams/"+team.ID.String()+"/assign", map[string]any{
			"employeeIds": []string{e1.ID.String(), e2.ID.String()},
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Bo Lee")
		assert.Contains(t, rr.Body.String(), "Ada Ng")

		assert.EqualValues(t, 1, countAssignments(t, tc, e1.ID.String(), team.ID.String()))
		assert.EqualValues(t, 1, countAssignments(t, tc, e2.ID.String(), team.ID.String()))

		// One entry for the whole call
		assert.EqualValues(t, 1, testutil.CountLogs(t, tc.DB, string(audit.ActionEmployeesAssigned)))
	})

	t.Run("accepts a single employeeId", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Design")
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Cam", "Wu")

		req := testutil.AuthenticatedRequest(t, "POST", "/teams/"+team.ID.String()+"/assign", map[string]any{
			"employeeId": employee.ID.String(),
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.EqualValues(t, 1, countAssignments(t, tc, employee.ID.String(), team.ID.String()))
	})

	t.Run("reassignment is idempotent", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Support")
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Dee", "Po")

		for i := 0; i < 2; i++ {
			req := testutil.AuthenticatedRequest(t, "POST", "/teams/"+team.ID.String()+"/assign", map[string]any{
				"employeeIds": []string{employee.ID.String()},
			}, tc.Token)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusOK, rr.Code)
		}

		assert.EqualValues(t, 1, countAssignments(t, tc, employee.ID.String(), team.ID.String()))
	})

	t.Run("unknown employee fails the whole call", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Ops")
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Eli", "Tan")

		req := testutil.AuthenticatedRequest(t, "POST", "/teams/"+team.ID.String()+"/assign", map[string]any{
			"employeeIds": []string{employee.ID.String(), "00000000-0000-0000-0000-000000000001"},
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "One or more employees not found")

		// Nothing was written for the valid id either
		assert.EqualValues(t, 0, countAssignments(t, tc, employee.ID.String(), team.ID.String()))
	})

	t.Run("cross-tenant employee fails the whole call", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Sales")
		otherOrg := testutil.CreateTestOrg(t, tc.DB)
		foreign := testutil.CreateTestEmployee(t, tc.DB, otherOrg.ID, "Eve", "Stranger")

		req := testutil.AuthenticatedRequest(t, "POST", "/teams/"+team.ID.String()+"/assign", map[string]any{
			"employeeIds": []string{foreign.ID.String()},
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.EqualValues(t, 0, countAssignments(t, tc, foreign.ID.String(), team.ID.String()))
	})

	t.Run("empty employee list is rejected", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Finance")

		req := testutil.AuthenticatedRequest(t, "POST", "/teams/"+team.ID.String()+"/assign", map[string]any{
			"employeeIds": []string{},
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "No employee IDs provided")
	})
}

func TestTeamHandler_Unassign(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	t.Run("removes an existing assignment", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Engineering")
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Bo", "Lee")
		require.NoError(t, tc.DB.Create(&models.EmployeeTeam{
			EmployeeID: employee.ID,
			TeamID:     team.ID,
		}).Error)

		req := testutil.AuthenticatedRequest(t, "DELETE", "/teams/"+team.ID.String()+"/unassign", map[string]any{
			"employeeId": employee.ID.String(),
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.EqualValues(t, 0, countAssignments(t, tc, employee.ID.String(), team.ID.String()))
		assert.EqualValues(t, 1, testutil.CountLogs(t, tc.DB, string(audit.ActionEmployeeUnassigned)))
	})

	t.Run("pair never assigned is a 404 and audits nothing", func(t *testing.T) {
		team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Design")
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Ada", "Ng")

		before := testutil.CountLogs(t, tc.DB, string(audit.ActionEmployeeUnassigned))

		req := testutil.AuthenticatedRequest(t, "DELETE", "/teams/"+team.ID.String()+"/unassign", map[string]any{
			"employeeId": employee.ID.String(),
		}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Employee is not assigned to this team")
		assert.Equal(t, before, testutil.CountLogs(t, tc.DB, string(audit.ActionEmployeeUnassigned)))
	})
}

// An employee's team memberships show up on the employee, and deleting the
// team removes both the membership rows and the team itself.
func TestTeamLifecycle(t *testing.T) {
	router, tc := setupTeamTestRouter(t)
	defer tc.Cleanup()

	team := testutil.CreateTestTeam(t, tc.DB, tc.Org.ID, "Engineering")
	employee := testutil.CreateTestEmployee(t, tc.DB, tc.Org.ID, "Bo", "Lee")

	assign := testutil.AuthenticatedRequest(t, "POST", "/teams/"+team.ID.String()+"/assign", map[string]any{
		"employeeIds": []string{employee.ID.String()},
	}, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, assign)
	require.Equal(t, http.StatusOK, rr.Code)

	get := testutil.AuthenticatedRequest(t, "GET", "/employees/"+employee.ID.String(), nil, tc.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, get)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Engineering")

	del := testutil.AuthenticatedRequest(t, "DELETE", "/teams/"+team.ID.String(), nil, tc.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, del)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, testutil.CountLogs(t, tc.DB, string(audit.ActionTeamDeleted)))

	getTeam := testutil.AuthenticatedRequest(t, "GET", "/teams/"+team.ID.String(), nil, tc.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, getTeam)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.EqualValues(t, 0, countAssignments(t, tc, employee.ID.String(), team.ID.String()))

	getEmployee := testutil.AuthenticatedRequest(t, "GET", "/employees/"+employee.ID.String(), nil, tc.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, getEmployee)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Engineering")
}
