package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceLoggerWritesComponent(t *testing.T) {
	logger.SetLogLevel(logger.DebugLevel)
	var buf bytes.Buffer
	log := logger.New(&buf).With("econ")

	log.Info().Str("point", "OutdoorAirTemperature").Msg("Missing data from publish")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "econ", line["component"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "OutdoorAirTemperature", line["point"])
	assert.Equal(t, "Missing data from publish", line["message"])
}

func TestErrorWithCode(t *testing.T) {
	logger.SetLogLevel(logger.DebugLevel)
	var buf bytes.Buffer
	log := logger.New(&buf)

	log.ErrorWithCode(errors.New().New(errors.ErrCycleFailed)).Msg("")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cycle_failed", line["error_code"])
	assert.Equal(t, "Failed to process reading batch", line["error_message"])
}

func TestErrorWithCodeIncludesData(t *testing.T) {
	logger.SetLogLevel(logger.DebugLevel)
	var buf bytes.Buffer
	log := logger.New(&buf)

	log.ErrorWithCode(errors.New().WithData(errors.ErrSubscribe, "devices/a/all")).Msg("")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "devices/a/all", line["error_data"])

	buf.Reset()
	log.ErrorWithCode(errors.New().New(errors.ErrSubscribe)).Msg("")
	line = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "error_data")
}

func TestParseLevel(t *testing.T) {
	lvl, err := logger.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, lvl)

	lvl, err = logger.ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, logger.WarnLevel, lvl)

	_, err = logger.ParseLevel("loud")
	require.Error(t, err)
	code, ok := errors.Code(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidLogLevel, code)
}
