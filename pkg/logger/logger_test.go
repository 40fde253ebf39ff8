package logger_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Seguros-api/pkg/logger"
)

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Service: "seguros-api", Out: &buf})

	log.Component("cobranza").Info().Int("evaluadas", 3).Msg("corrida diaria")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "seguros-api", line["service"])
	assert.Equal(t, "cobranza", line["component"])
	assert.Equal(t, "info", line["level"])
	assert.EqualValues(t, 3, line["evaluadas"])
}

func TestNew_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "ruidoso", Out: &buf})

	log.Debug().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Info().Msg("sí sale")
	assert.NotZero(t, buf.Len())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("nada") })
}
