package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/fiolens/internal/config"
)

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// KafkaPublisher writes file reports as JSON messages keyed by file name.
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
	logger  *zap.Logger
}

// NewKafkaPublisher creates a publisher for the configured topic. No connection is
// made until the first Publish.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
		)
		return nil, ErrInvalidKafkaConfig
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       kafkaZapLogger{logger.Named("kafka-writer").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger:  kafkaZapErrorLogger{logger.Named("kafka-writer-error").WithOptions(zap.AddCallerSkip(1))},
	}

	logger.Info("Kafka publisher created",
		zap.String("topic", cfg.Topic),
		zap.Strings("brokers", cfg.Brokers),
		zap.Duration("write_timeout", cfg.WriteTimeout),
	)

	return &KafkaPublisher{writer: w, timeout: cfg.WriteTimeout, logger: logger}, nil
}

// Publish sends one report and waits for the broker acknowledgement.
func (p *KafkaPublisher) Publish(ctx context.Context, report FileReport) error {
	msg, err := encodeReport(report)
	if err != nil {
		return err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, report.File, err)
	}
	p.logger.Debug("Published file report", zap.String("file", report.File))
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher...")
	return p.writer.Close()
}

func encodeReport(report FileReport) (kafka.Message, error) {
	value, err := json.Marshal(report)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %s: %w", ErrPublishFailed, report.File, err)
	}
	return kafka.Message{
		Key:   []byte(report.File),
		Value: value,
		Time:  report.ReducedAt,
	}, nil
}
