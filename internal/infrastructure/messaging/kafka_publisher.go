package messaging

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
	"visa-onboarding.backend/internal/config"
	"visa-onboarding.backend/internal/domain/events"
	"visa-onboarding.backend/pkg/logger"
)

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes notification events to a Kafka topic keyed by
// employee id so one employee's events stay ordered.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher builds a synchronous writer for cfg. SASL/TLS is used
// when a username is configured.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers()...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if cfg.Username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return &KafkaPublisher{writer: w}
}

// Publish sends the event. Failures are logged and dropped.
func (p *KafkaPublisher) Publish(ctx context.Context, event events.Event) {
	value, err := json.Marshal(event)
	if err != nil {
		logger.Error(ctx, "failed to encode event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	// the request context may already be done once the handler returns
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.EmployeeID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		logger.Error(ctx, "failed to publish event",
			zap.String("type", event.Type),
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return
	}
	logger.Debug(ctx, "event published", zap.String("type", event.Type), zap.String("event_id", event.ID.String()))
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
