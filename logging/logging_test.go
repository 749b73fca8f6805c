package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("production", "", &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("component", "engine").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "visible", entry["message"])
}

func TestSetup_LevelOverride(t *testing.T) {
	logger := SetupWithWriter("development", "warn", &bytes.Buffer{})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = SetupWithWriter("development", "", &bytes.Buffer{})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
