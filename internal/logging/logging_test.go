package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_DefaultsToInfo(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug should be disabled by default")
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel), "info should be enabled by default")
}

func TestNew_RespectsLevel(t *testing.T) {
	logger, err := New(Options{Level: "debug"})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, err := New(Options{File: path})
	require.NoError(t, err)

	logger.Info("hello from the test")
	// Syncing stderr fails on some platforms; the file sink is what matters.
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
	assert.Contains(t, string(data), "INFO")
	assert.NotContains(t, string(data), "\x1b[", "file output must not carry color codes")
}

func TestDefaultLogFile(t *testing.T) {
	path := DefaultLogFile("logs")

	assert.True(t, strings.HasPrefix(path, "logs"+string(filepath.Separator)))
	assert.True(t, strings.HasSuffix(path, ".log"))
}
