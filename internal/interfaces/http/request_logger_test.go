package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/ArtEnginer/POS/internal/interfaces/http"
)

func TestRequestLogger_RegistraStatusYRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	app := fiber.New()
	app.Use(requestid.New(), apphttp.RequestLogger())
	app.Get("/boom", func(c *fiber.Ctx) error {
		zerolog.Ctx(c.UserContext()).Info().Msg("dentro del handler")
		return c.SendStatus(fiber.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "req-123", inner["request_id"], "el logger del contexto lleva el request id")
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/boom", entry["path"])
	assert.EqualValues(t, 409, entry["status"])
	assert.Equal(t, "req-123", entry["request_id"])
}
