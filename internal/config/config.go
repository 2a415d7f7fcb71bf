package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

const (
	defaultMode           = "elapsed"
	defaultEveryNth       = 1
	defaultCombine        = "positional"
	defaultLoadLimit      = 1.0
	defaultLogType        = "bw"
	defaultGraphType      = "default"
	defaultOutput         = "output.png"
	defaultTitle          = "Fio Log Experiment"
	defaultBins           = 100
	defaultWorkers        = 1
	defaultKafkaTimeout   = 10 * time.Second
	defaultMetricsPath    = "/metrics"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogFileEnabled = false
	defaultLogDirectory   = "log"
	defaultLogFilename    = "fiolens.log"
	defaultLogMaxSizeMB   = 100
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 7
	defaultLogCompress    = false

	// Environment variable prefix
	envPrefix = "FIOLENS"
)

type Config struct {
	Reduce   ReduceConfig   `mapstructure:"reduce"`
	Plot     PlotConfig     `mapstructure:"plot"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type ReduceConfig struct {
	Mode             string   `mapstructure:"mode"` // elapsed, ios, io_count, mixed, histogram
	EveryNth         int      `mapstructure:"everyNth"`
	SameTime         bool     `mapstructure:"sameTime"`
	OutlierCutoff    *float64 `mapstructure:"outlierCutoff"`
	AggregateFiles   bool     `mapstructure:"aggregateFiles"`
	Combine          string   `mapstructure:"combine"` // positional, aligned
	CountRepetitions bool     `mapstructure:"countRepetitions"`
	LoadLimit        float64  `mapstructure:"loadLimit"`
}

type PlotConfig struct {
	Output    string   `mapstructure:"output"`
	Title     string   `mapstructure:"title"`
	LogType   string   `mapstructure:"logType"`   // bw, lat, iops
	GraphType string   `mapstructure:"graphType"` // default, bar, line, dots, errorbar
	LogScaleY bool     `mapstructure:"logScaleY"`
	AxisAlign *float64 `mapstructure:"axisAlign"` // fixed y-axis top
	Bins      int      `mapstructure:"bins"`
	Disabled  bool     `mapstructure:"disabled"`
}

type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// Enabled reports whether results should be published.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the endpoint
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load reads the configuration like LoadUnvalidated and then validates it.
func Load(configPath string) (*Config, error) {
	cfg, err := LoadUnvalidated(configPath)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated initializes viper, reads config, applies defaults and unmarshals.
// An empty configPath skips the file and uses defaults plus environment variables.
// Callers that apply their own overrides must call Validate afterwards.
func LoadUnvalidated(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	setDefaults(v)

	if configPath != "" {
		if err := readConfigFile(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("reduce.mode", defaultMode)
	v.SetDefault("reduce.everyNth", defaultEveryNth)
	v.SetDefault("reduce.sameTime", false)
	v.SetDefault("reduce.aggregateFiles", false)
	v.SetDefault("reduce.combine", defaultCombine)
	v.SetDefault("reduce.countRepetitions", false)
	v.SetDefault("reduce.loadLimit", defaultLoadLimit)
	// Optional keys have no default; binding makes them visible to Unmarshal.
	_ = v.BindEnv("reduce.outlierCutoff")
	_ = v.BindEnv("plot.axisAlign")
	v.SetDefault("plot.output", defaultOutput)
	v.SetDefault("plot.title", defaultTitle)
	v.SetDefault("plot.logType", defaultLogType)
	v.SetDefault("plot.graphType", defaultGraphType)
	v.SetDefault("plot.logScaleY", false)
	v.SetDefault("plot.bins", defaultBins)
	v.SetDefault("plot.disabled", false)
	v.SetDefault("pipeline.workers", defaultWorkers)
	v.SetDefault("kafka.writeTimeout", defaultKafkaTimeout)
	v.SetDefault("metrics.path", defaultMetricsPath)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) || errors.Is(err, fs.ErrNotExist) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

// Validate checks a Config, typically after command line overrides were applied.
func Validate(cfg *Config) error {
	if _, err := reduce.ParseMode(cfg.Reduce.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, cfg.Reduce.Mode)
	}
	if cfg.Reduce.EveryNth <= 0 {
		return ErrInvalidEveryNth
	}
	switch reduce.CombineStrategy(cfg.Reduce.Combine) {
	case reduce.CombineStrategyPositional, reduce.CombineStrategyAligned:
	default:
		return ErrInvalidCombine
	}
	switch cfg.Plot.LogType {
	case "bw", "lat", "iops":
	default:
		return ErrInvalidLogType
	}
	switch cfg.Plot.GraphType {
	case "default", "bar", "line", "dots", "errorbar":
	default:
		return ErrInvalidGraphType
	}
	if cfg.Pipeline.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if cfg.Kafka.Enabled() && cfg.Kafka.Topic == "" {
		return ErrEmptyKafkaTopic
	}
	return nil
}

// ReduceOptions converts the reduce section into the options bag consumed by the
// reducers.
func (c *Config) ReduceOptions() reduce.Options {
	mode, _ := reduce.ParseMode(c.Reduce.Mode)
	return reduce.Options{
		Mode:             mode,
		EveryNth:         uint64(c.Reduce.EveryNth),
		SameTime:         c.Reduce.SameTime,
		OutlierCutoff:    c.Reduce.OutlierCutoff,
		AggregateFiles:   c.Reduce.AggregateFiles,
		Combine:          reduce.CombineStrategy(c.Reduce.Combine),
		CountRepetitions: c.Reduce.CountRepetitions,
		LoadLimit:        c.Reduce.LoadLimit,
	}
}
