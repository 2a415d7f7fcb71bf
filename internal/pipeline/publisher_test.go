package pipeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/fiolens/internal/config"
	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

func TestNewKafkaPublisherValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.KafkaConfig
	}{
		{"no brokers", config.KafkaConfig{Topic: "fio-results"}},
		{"no topic", config.KafkaConfig{Brokers: []string{"localhost:9092"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKafkaPublisher(tt.cfg, zap.NewNop())
			assert.ErrorIs(t, err, ErrInvalidKafkaConfig)
		})
	}
}

func TestNewKafkaPublisher(t *testing.T) {
	p, err := NewKafkaPublisher(config.KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "fio-results",
		WriteTimeout: time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "fio-results", p.writer.Topic)
	assert.NoError(t, p.Close())
}

func TestEncodeReport(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	report := FileReport{
		File:      "job_lat.1.log",
		Path:      "/data/job_lat.1.log",
		Mode:      reduce.ModeElapsed,
		Lines:     1200,
		Points:    12,
		Summary:   &reduce.Summary{Count: 12, Mean: 41.5, Max: 90},
		Elapsed:   3 * time.Millisecond,
		ReducedAt: at,
	}

	msg, err := encodeReport(report)
	require.NoError(t, err)
	assert.Equal(t, []byte("job_lat.1.log"), msg.Key)
	assert.Equal(t, at, msg.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "elapsed", decoded["mode"])
	assert.Equal(t, float64(1200), decoded["lines"])
	assert.Equal(t, float64(3*time.Millisecond), decoded["elapsed_ns"])
	assert.Contains(t, decoded, "summary")
}
