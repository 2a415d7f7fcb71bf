package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "elapsed", cfg.Reduce.Mode)
	assert.Equal(t, 1, cfg.Reduce.EveryNth)
	assert.Nil(t, cfg.Reduce.OutlierCutoff)
	assert.Equal(t, "positional", cfg.Reduce.Combine)
	assert.Equal(t, "output.png", cfg.Plot.Output)
	assert.Equal(t, 1, cfg.Pipeline.Workers)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 10*time.Second, cfg.Kafka.WriteTimeout)
	assert.Equal(t, "info", cfg.Log.Level)

	opts := cfg.ReduceOptions()
	assert.Equal(t, reduce.ModeElapsed, opts.Mode)
	assert.Equal(t, uint64(1), opts.EveryNth)
	assert.NoError(t, opts.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
reduce:
  mode: io_count
  everyNth: 1000
  sameTime: true
  outlierCutoff: 5000
  aggregateFiles: true
plot:
  logType: iops
  graphType: line
  axisAlign: 120
pipeline:
  workers: 4
kafka:
  brokers: ["localhost:9092"]
  topic: fio-series
  writeTimeout: 3s
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "io_count", cfg.Reduce.Mode)
	assert.Equal(t, 1000, cfg.Reduce.EveryNth)
	assert.True(t, cfg.Reduce.SameTime)
	require.NotNil(t, cfg.Reduce.OutlierCutoff)
	assert.Equal(t, 5000.0, *cfg.Reduce.OutlierCutoff)
	require.NotNil(t, cfg.Plot.AxisAlign)
	assert.Equal(t, 120.0, *cfg.Plot.AxisAlign)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 3*time.Second, cfg.Kafka.WriteTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	opts := cfg.ReduceOptions()
	assert.True(t, opts.AggregateFiles)
	assert.Equal(t, uint64(1000), opts.EveryNth)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FIOLENS_REDUCE_MODE", "ios")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ios", cfg.Reduce.Mode)
}

func TestLoadEnvOptionalKeys(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg.Reduce.OutlierCutoff)
	assert.Nil(t, cfg.Plot.AxisAlign)

	t.Setenv("FIOLENS_REDUCE_OUTLIERCUTOFF", "2.5")
	t.Setenv("FIOLENS_PLOT_AXISALIGN", "400")
	cfg, err = Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg.Reduce.OutlierCutoff)
	require.NotNil(t, cfg.Plot.AxisAlign)
	assert.Equal(t, 2.5, *cfg.Reduce.OutlierCutoff)
	assert.Equal(t, 400.0, *cfg.Plot.AxisAlign)
	assert.Equal(t, 2.5, *cfg.ReduceOptions().OutlierCutoff)
}

func TestLoadUnvalidatedDefersValidation(t *testing.T) {
	path := writeConfig(t, "reduce:\n  mode: scatter\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidMode)

	cfg, err := LoadUnvalidated(path)
	require.NoError(t, err)
	assert.Equal(t, "scatter", cfg.Reduce.Mode)

	// an override applied after loading repairs the file value
	cfg.Reduce.Mode = "ios"
	assert.NoError(t, Validate(cfg))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileMissing)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"mode", func(c *Config) { c.Reduce.Mode = "scatter" }, ErrInvalidMode},
		{"every nth", func(c *Config) { c.Reduce.EveryNth = 0 }, ErrInvalidEveryNth},
		{"combine", func(c *Config) { c.Reduce.Combine = "zip" }, ErrInvalidCombine},
		{"log type", func(c *Config) { c.Plot.LogType = "slat" }, ErrInvalidLogType},
		{"graph type", func(c *Config) { c.Plot.GraphType = "pie" }, ErrInvalidGraphType},
		{"workers", func(c *Config) { c.Pipeline.Workers = 0 }, ErrInvalidWorkers},
		{"kafka topic", func(c *Config) { c.Kafka.Brokers = []string{"k:9092"} }, ErrEmptyKafkaTopic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}
