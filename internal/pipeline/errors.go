package pipeline

import "errors"

var (
	ErrNoInputFiles       = errors.New("no input files given")
	ErrInvalidKafkaConfig = errors.New("invalid Kafka configuration provided")
	ErrPublisherCreation  = errors.New("failed to create result publisher")
	ErrReduceFailed       = errors.New("reducing log file failed")
	ErrCombineFailed      = errors.New("combining file results failed")
	ErrPublishFailed      = errors.New("publishing file result failed")
)
