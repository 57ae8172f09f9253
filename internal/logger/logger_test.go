package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "auto", false)

	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["component"])
}

func TestNew_PrettyWhenTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "auto", true)

	log.Info().Msg("hello")

	assert.False(t, json.Valid(buf.Bytes()))
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	_ = New(&buf, "loud", "json", false)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
