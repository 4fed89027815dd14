package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLogLevel("WARNING"))
	assert.Equal(t, ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, InfoLevel, ParseLogLevel(""))
	assert.Equal(t, InfoLevel, ParseLogLevel("verbose"))
}

func TestLoggerEmitsJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(InfoLevel, &buf).Named("resolver").WithField("generation", 3)

	log.Info("profile resolved", "role", "vendor")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "profile resolved", record["msg"])
	assert.Equal(t, "resolver", record["component"])
	assert.Equal(t, float64(3), record["generation"])
	assert.Equal(t, "vendor", record["role"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(WarnLevel, &buf)

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(InfoLevel, &buf).WithFields(map[string]interface{}{
		"user_id": "u1",
		"phase":   "ready",
	})

	log.Info("resolved")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "u1", record["user_id"])
	assert.Equal(t, "ready", record["phase"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(InfoLevel, &buf)

	log.WithError(errors.New("boom")).Error("fetch failed")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "boom", record["error"])

	// A nil error is a no-op, not a panic.
	assert.Same(t, log, log.WithError(nil))
}
