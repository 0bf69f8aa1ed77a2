package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: int(slog.LevelWarn)}, &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept", slog.String("table", "orders"))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "orders", rec["table"])
}
