package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"dealscope/internal/config"
)

// RunEvent is one audit record about a pipeline run.
type RunEvent struct {
	RunID      string    `json:"runId"`
	UserID     uint      `json:"userId"`
	Event      string    `json:"event"` // "started" | "completed"
	Model      string    `json:"model"`
	TotalFiles int       `json:"totalFiles"`
	ErrorCount int       `json:"errorCount"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuditPublisher ships pipeline run events to Kafka. A nil publisher is valid
// and drops every event, so callers never branch on whether auditing is on.
type AuditPublisher struct {
	writer *kafka.Writer
}

// NewAuditPublisher creates a publisher for the configured audit topic.
// Returns nil when no brokers are configured.
func NewAuditPublisher(cfg *config.KafkaConfig) *AuditPublisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	topic := cfg.AuditTopic
	if topic == "" {
		topic = "pipeline_runs"
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &AuditPublisher{writer: writer}
}

// Publish serializes a run event and writes it keyed by run id.
func (p *AuditPublisher) Publish(ctx context.Context, event *RunEvent) error {
	if p == nil {
		return nil
	}
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RunID),
		Value: jsonData,
	}); err != nil {
		return fmt.Errorf("write run event to kafka: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *AuditPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
