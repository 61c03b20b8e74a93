package handler

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/policy"
	"crm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func attendanceApp(t *testing.T, actor policy.Actor) (*fiber.App, *AttendanceHandler, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	hdl := NewAttendanceHandler(repository.NewPunchRepository(db))

	app := testApp(actor)
	api := app.Group("/api/attendance")
	api.Post("/punch", hdl.Punch)
	api.Get("/today", hdl.Today)
	api.Get("/report", hdl.Report)
	api.Get("/anomalies", hdl.Anomalies)
	api.Get("/export", hdl.Export)
	api.Patch("/:id/validate", hdl.Validate)
	return app, hdl, db
}

var employee = policy.Actor{ID: 1, Email: "employee@crm.local", Role: model.RoleEmployee}

func fixedClock(hour, min int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 16, hour, min, 0, 0, time.Local)
	}
}

func TestPunchRecordsAndClassifies(t *testing.T) {
	app, hdl, _ := attendanceApp(t, employee)
	hdl.now = fixedClock(8, 5)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["todayTotal"])

	att := body["attendance"].(map[string]any)
	assert.Equal(t, "IN_MORNING", att["type"])
	assert.Equal(t, "NONE", att["anomaly"])
	assert.Contains(t, body["message"], "enregistré à 08:05")
}

func TestPunchLateAnomaly(t *testing.T) {
	app, hdl, _ := attendanceApp(t, employee)
	hdl.now = fixedClock(10, 15)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "LATE", body["attendance"].(map[string]any)["anomaly"])
	assert.Contains(t, body["message"], "Pointage en retard")
}

func TestPunchDuplicateRejected(t *testing.T) {
	app, hdl, _ := attendanceApp(t, employee)
	hdl.now = fixedClock(8, 5)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	hdl.now = fixedClock(8, 30)
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Déjà pointé", body["message"])
	// The payload reports the first punch's time.
	assert.Contains(t, body["details"].(map[string]any)["message"], "08:05")
}

func TestPunchInvalidKind(t *testing.T) {
	app, _, _ := attendanceApp(t, employee)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_NIGHT"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTodaySummary(t *testing.T) {
	app, hdl, _ := attendanceApp(t, employee)

	hdl.now = fixedClock(8, 5)
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	hdl.now = fixedClock(12, 10)
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "OUT_MORNING"})

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/attendance/today", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["totalPunches"])
	assert.Equal(t, float64(245), summary["workedMinutes"])
	assert.Equal(t, "4h05", summary["workedTime"])
	assert.Equal(t, false, summary["hasAnomalies"])
}

func TestReportAggregates(t *testing.T) {
	app, hdl, _ := attendanceApp(t, employee)

	hdl.now = fixedClock(8, 0)
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	hdl.now = fixedClock(12, 0)
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "OUT_MORNING"})

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/attendance/report?month=6&year=2025", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["daysWorked"])
	assert.Equal(t, "4h00", summary["totalWorkedTime"])
	assert.Equal(t, "5%", summary["attendanceRate"])

	daily := body["dailyReports"].([]any)
	require.Len(t, daily, 1)
	assert.Equal(t, "2025-06-16", daily[0].(map[string]any)["date"])
}

func TestAnomaliesListsOnlyFlagged(t *testing.T) {
	app, hdl, _ := attendanceApp(t, employee)

	hdl.now = fixedClock(10, 30) // late
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	hdl.now = fixedClock(12, 0) // clean
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "OUT_MORNING"})

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/attendance/anomalies", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	entries := body["anomalies"].([]any)
	assert.Equal(t, "LATE", entries[0].(map[string]any)["anomaly"])
}

func TestExportCSVFormat(t *testing.T) {
	app, hdl, _ := attendanceApp(t, employee)

	hdl.now = fixedClock(8, 0)
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})
	hdl.now = fixedClock(12, 0)
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "OUT_MORNING"})

	req := httptest.NewRequest(fiber.MethodGet, "/api/attendance/export?month=6&year=2025", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "pointages_6_2025.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(string(raw), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Type,Heure,Anomalie", lines[0])
	assert.Equal(t, "2025-06-16,IN_MORNING,08:00:00,NONE", lines[1])
}

func TestValidateRequiresReviewerRole(t *testing.T) {
	app, hdl, db := attendanceApp(t, employee)
	hdl.now = fixedClock(10, 30)
	doJSON(t, app, fiber.MethodPost, "/api/attendance/punch", fiber.Map{"type": "IN_MORNING"})

	resp, _ := doJSON(t, app, fiber.MethodPatch, "/api/attendance/1/validate", fiber.Map{"validated": true})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	reviewer := testApp(policy.Actor{ID: 2, Role: model.RoleManager})
	reviewer.Patch("/api/attendance/:id/validate", hdl.Validate)
	resp, _ = doJSON(t, reviewer, fiber.MethodPatch, "/api/attendance/1/validate",
		fiber.Map{"validated": true, "note": "retard justifié"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var punch model.Punch
	require.NoError(t, db.First(&punch, 1).Error)
	assert.True(t, punch.Validated)
	assert.Equal(t, "retard justifié", punch.Note)
}

func TestPunchUniqueIndexGuardsConcurrentWriters(t *testing.T) {
	_, _, db := attendanceApp(t, employee)

	first := model.Punch{EmployeeID: 1, Day: "2025-06-16", Kind: "IN_MORNING",
		Timestamp: time.Date(2025, 6, 16, 8, 0, 0, 0, time.Local)}
	require.NoError(t, db.Create(&first).Error)

	second := model.Punch{EmployeeID: 1, Day: "2025-06-16", Kind: "IN_MORNING",
		Timestamp: time.Date(2025, 6, 16, 8, 1, 0, 0, time.Local)}
	err := db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
