package config

import "errors"

var (
	ErrReadingConfigFile   = errors.New("failed to read config file")
	ErrUnmarshallingConfig = errors.New("failed to unmarshal config")
	ErrConfigFileMissing   = errors.New("config file not found")
	ErrInvalidMode         = errors.New("reduce mode is not supported")
	ErrInvalidEveryNth     = errors.New("reduce everyNth must be positive")
	ErrInvalidLogType      = errors.New("plot logType must be one of bw, lat, iops")
	ErrInvalidGraphType    = errors.New("plot graphType must be one of default, bar, line, dots, errorbar")
	ErrInvalidWorkers      = errors.New("pipeline workers must be positive")
	ErrInvalidCombine      = errors.New("reduce combine must be positional or aligned")
	ErrEmptyKafkaTopic     = errors.New("kafka topic cannot be empty when brokers are set")
)
