package tapesoup

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFansOut(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "soup.log")

	logger, closer, err := NewLogger(LogConfig{Level: "info", File: path}, &stderr)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("epoch done", "epoch", 3)
	require.NoError(t, closer.Close())

	assert.Contains(t, stderr.String(), "epoch done")
	assert.NotContains(t, stderr.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "epoch done", record["msg"])
	assert.Equal(t, 3.0, record["epoch"])
}

func TestNewLoggerLevels(t *testing.T) {
	var stderr bytes.Buffer

	logger, _, err := NewLogger(LogConfig{Level: "debug"}, &stderr)
	require.NoError(t, err)
	logger.Debug("visible")
	assert.Contains(t, stderr.String(), "visible")

	_, _, err = NewLogger(LogConfig{Level: "loud"}, &stderr)
	assert.Error(t, err)
}
