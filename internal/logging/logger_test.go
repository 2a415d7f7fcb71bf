package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanspareilsmyn/fiolens/internal/config"
)

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	lvl, err = parseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)
}

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(config.LogConfig{
		Level:              "info",
		Format:             "json",
		FileLoggingEnabled: true,
		Directory:          dir,
		Filename:           "fiolens.log",
		MaxSize:            1,
	})
	require.NoError(t, err)

	logger.Info("reduced file", zap.String("path", "a.log"))
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "fiolens.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"reduced file"`)
	assert.Contains(t, string(data), `"path":"a.log"`)
}

func TestNewLoggerConsole(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "bogus", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestProgress(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	report := Progress(zap.New(core), "/data/job_lat.1.log")

	report(50, 200)
	report(200, 200)
	report(1, 0)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "25%", entries[0].ContextMap()["percent"])
	assert.Equal(t, "job_lat.1.log", entries[1].ContextMap()["file"])
}

func TestProgressSkippedAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Progress(zap.New(core), "x.log")(1, 2)
	assert.Zero(t, logs.Len())
}

func TestTimed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	done := Timed(zap.New(core), "Line count time", zap.String("file", "a.log"))
	done()

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "a.log", fields["file"])
	assert.Contains(t, fields, "elapsed")
}
