package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtEnginer/POS/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("ruidoso"))
}

func TestNew_JSONConServicioYGlobal(t *testing.T) {
	prevGlobal, prevCtx := log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = prevGlobal
		zerolog.DefaultContextLogger = prevCtx
	})

	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Service: "pos-api", Out: &buf})

	l.Info().Msg("descartado por nivel")
	l.Warn().Str("sku", "SKU-1").Msg("stock bajo")
	zerolog.Ctx(context.Background()).Error().Msg("desde contexto vacío")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "warn", first["level"])
	assert.Equal(t, "pos-api", first["service"])
	assert.Equal(t, "SKU-1", first["sku"])
	assert.Contains(t, string(lines[1]), "desde contexto vacío")
}
