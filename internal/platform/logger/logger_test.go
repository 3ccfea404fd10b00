package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := logger.NewWatermillAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	adapter.With(watermill.LogFields{"topic": "reconciliation.retry"}).
		Error("handler failed", errors.New("boom"), watermill.LogFields{"message_uuid": "m-1"})
	adapter.Debug("dropped at info level", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "handler failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "reconciliation.retry", entry["topic"])
	assert.Equal(t, "m-1", entry["message_uuid"])
	assert.Equal(t, "watermill", entry["component"])
}

func TestNew_FallsBackToInfo(t *testing.T) {
	log := logger.New("chatty", false)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log = logger.New("debug", false)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}
