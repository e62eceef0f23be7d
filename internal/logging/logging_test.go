package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "klava.log")
	logger, closer, err := New(Config{Path: path, Level: slog.LevelInfo})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("guard state changed", "state", "dimming")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "state=dimming")
	assert.Contains(t, out, "component=klava")
	assert.NotContains(t, out, "hidden")
}

func TestNewWithoutPathDiscards(t *testing.T) {
	logger, closer, err := New(Config{})
	require.NoError(t, err)
	logger.Info("nothing")
	assert.NoError(t, closer.Close())
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)
	logger.Info("skip")
	logger.Warn("keep")
	assert.False(t, strings.Contains(buf.String(), "skip"))
	assert.True(t, strings.Contains(buf.String(), "keep"))
}
