package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-backend/internal/apperr"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Contact{},
		&model.Deal{},
		&model.Ticket{},
		&model.TicketMessage{},
		&model.TicketSequence{},
		&model.Activity{},
		&model.Punch{},
	))
	return db
}

func testApp(actor policy.Actor) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.FiberHandler(false)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.ActorKey, actor)
		return c.Next()
	})
	return app
}

// fakeEmitter records fan-out events so handlers can be asserted against.
type fakeEmitter struct {
	events []string
}

func (f *fakeEmitter) Emit(event string, payload any) {
	f.events = append(f.events, event)
}

func (f *fakeEmitter) EmitRoom(room, event string, payload any) {
	f.events = append(f.events, room+"/"+event)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}
