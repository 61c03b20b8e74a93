package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/attendance"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/policy"
	"crm-backend/internal/repository"
	"crm-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttendanceHandler struct {
	repo repository.PunchRepository
	// now is swappable so tests can punch at a fixed clock.
	now func() time.Time
}

func NewAttendanceHandler(repo repository.PunchRepository) *AttendanceHandler {
	return &AttendanceHandler{repo: repo, now: time.Now}
}

type PunchLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type PunchDeviceInfo struct {
	UserAgent string `json:"user_agent"`
	Platform  string `json:"platform"`
}

type PunchRequest struct {
	Type       string           `json:"type" validate:"required,oneof=IN_MORNING OUT_MORNING IN_AFTERNOON OUT_EVENING"`
	Source     string           `json:"source" validate:"omitempty,oneof=WEB MOBILE QR MANUAL"`
	Location   *PunchLocation   `json:"location"`
	DeviceInfo *PunchDeviceInfo `json:"device_info"`
}

func toEnginePunch(p model.Punch) attendance.Punch {
	return attendance.Punch{
		Kind:    attendance.Kind(p.Kind),
		At:      p.Timestamp,
		Anomaly: attendance.Anomaly(p.Anomaly),
	}
}

func toEnginePunches(rows []model.Punch) []attendance.Punch {
	punches := make([]attendance.Punch, len(rows))
	for i, p := range rows {
		punches[i] = toEnginePunch(p)
	}
	return punches
}

func duplicateError(existing *model.Punch) *apperr.Error {
	return apperr.BadRequest("Déjà pointé").WithDetails(fiber.Map{
		"message": fmt.Sprintf("Vous avez déjà effectué ce pointage aujourd'hui à %s",
			existing.Timestamp.Format("15:04")),
	})
}

// Punch records one clock action. Duplicate kinds on the same day are
// rejected, reporting back the earlier punch time.
func (h *AttendanceHandler) Punch(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	var req PunchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if req.Source == "" {
		req.Source = string(attendance.SourceWeb)
	}

	now := h.now()
	day := now.Format("2006-01-02")

	existing, err := h.repo.GetByDayAndKind(actor.ID, day, req.Type)
	if err == nil {
		return duplicateError(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	today, err := h.repo.GetByDay(actor.ID, day)
	if err != nil {
		return err
	}
	anomaly := attendance.Classify(attendance.Kind(req.Type), now, toEnginePunches(today))

	punch := model.Punch{
		EmployeeID: actor.ID,
		Day:        day,
		Kind:       req.Type,
		Timestamp:  now,
		Source:     req.Source,
		Anomaly:    string(anomaly),
	}
	if req.Location != nil {
		raw, _ := json.Marshal(req.Location)
		punch.Location = datatypes.JSON(raw)
	}
	if req.DeviceInfo != nil {
		raw, _ := json.Marshal(req.DeviceInfo)
		punch.DeviceInfo = datatypes.JSON(raw)
	}

	if err := h.repo.Create(&punch); err != nil {
		// A concurrent request won the unique index race; report the punch
		// that landed first, same as the pre-check path.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if winner, ferr := h.repo.GetByDayAndKind(actor.ID, day, req.Type); ferr == nil {
				return duplicateError(winner)
			}
		}
		return err
	}

	log.Printf("[ATTENDANCE] punch %s employee=%d anomaly=%s", req.Type, actor.ID, anomaly)

	message := fmt.Sprintf("Pointage %s enregistré à %s", req.Type, now.Format("15:04"))
	if anomaly != attendance.AnomalyNone {
		message += " - Attention: " + anomaly.Warning()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"attendance": fiber.Map{
			"id":        punch.ID,
			"type":      punch.Kind,
			"timestamp": punch.Timestamp,
			"anomaly":   punch.Anomaly,
		},
		"todayTotal": len(today) + 1,
	})
}

// Today returns the day's punches with the worked-time summary.
func (h *AttendanceHandler) Today(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	now := h.now()

	rows, err := h.repo.GetByDay(actor.ID, now.Format("2006-01-02"))
	if err != nil {
		return err
	}

	entries := make([]fiber.Map, 0, len(rows))
	for _, p := range rows {
		entries = append(entries, fiber.Map{
			"id":        p.ID,
			"type":      p.Kind,
			"timestamp": p.Timestamp,
			"time":      p.Timestamp.Format("15:04"),
			"anomaly":   p.Anomaly,
			"source":    p.Source,
		})
	}

	return c.JSON(fiber.Map{
		"date":        now,
		"attendances": entries,
		"summary":     attendance.SummarizeDay(toEnginePunches(rows)),
	})
}

func (h *AttendanceHandler) periodFromQuery(c *fiber.Ctx) (time.Time, time.Time, int, int, error) {
	now := h.now()
	month := c.QueryInt("month", int(now.Month()))
	year := c.QueryInt("year", now.Year())

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if s := c.Query("startDate"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return start, end, month, year, apperr.BadRequest("Date de début invalide")
		}
		start = parsed
	}
	if e := c.Query("endDate"); e != "" {
		parsed, err := time.ParseInLocation("2006-01-02", e, time.Local)
		if err != nil {
			return start, end, month, year, apperr.BadRequest("Date de fin invalide")
		}
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, month, year, nil
}

// Report aggregates a date range into per-day and period totals.
func (h *AttendanceHandler) Report(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	start, end, month, year, err := h.periodFromQuery(c)
	if err != nil {
		return err
	}

	rows, err := h.repo.GetBetween(actor.ID, start, end)
	if err != nil {
		return err
	}

	report := attendance.BuildReport(toEnginePunches(rows))
	return c.JSON(fiber.Map{
		"period": fiber.Map{
			"startDate": start,
			"endDate":   end,
			"month":     month,
			"year":      year,
		},
		"dailyReports": report.DailyReports,
		"summary":      report.Summary,
	})
}

// Anomalies lists the last 50 punches flagged with a non-NONE anomaly.
func (h *AttendanceHandler) Anomalies(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	rows, err := h.repo.GetAnomalies(actor.ID, 50)
	if err != nil {
		return err
	}

	anomalies := make([]fiber.Map, 0, len(rows))
	for _, p := range rows {
		anomalies = append(anomalies, fiber.Map{
			"id":        p.ID,
			"type":      p.Kind,
			"timestamp": p.Timestamp,
			"date":      p.Timestamp.Format("2006-01-02"),
			"time":      p.Timestamp.Format("15:04"),
			"anomaly":   p.Anomaly,
			"validated": p.Validated,
		})
	}

	return c.JSON(fiber.Map{
		"anomalies": anomalies,
		"total":     len(anomalies),
	})
}

// Export streams the month's punches as the payroll CSV.
func (h *AttendanceHandler) Export(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	now := h.now()
	month := c.QueryInt("month", int(now.Month()))
	year := c.QueryInt("year", now.Year())

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	rows, err := h.repo.GetBetween(actor.ID, start, end)
	if err != nil {
		return err
	}

	csv := attendance.ExportCSV(toEnginePunches(rows))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=pointages_%d_%d.csv`, month, year))
	return c.SendString(csv)
}

type ValidatePunchRequest struct {
	Validated bool   `json:"validated"`
	Note      string `json:"note"`
}

// Validate lets a reviewer set the validation flag and anomaly note, the only
// mutation allowed after a punch is created.
func (h *AttendanceHandler) Validate(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if !policy.CanReviewAttendance(actor) {
		return apperr.Forbidden("Accès refusé")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req ValidatePunchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}

	punch, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}

	punch.Validated = req.Validated
	if req.Note != "" {
		punch.Note = req.Note
	}
	if err := h.repo.Update(punch); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":    "Pointage mis à jour",
		"attendance": punch,
	})
}
