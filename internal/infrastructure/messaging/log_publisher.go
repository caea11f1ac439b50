package messaging

import (
	"context"

	"go.uber.org/zap"
	"visa-onboarding.backend/internal/domain/events"
	"visa-onboarding.backend/pkg/logger"
)

// LogPublisher records events in the application log. It is used when no
// broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(ctx context.Context, event events.Event) {
	fields := []zap.Field{
		zap.String("type", event.Type),
		zap.String("event_id", event.ID.String()),
		zap.String("employee_id", event.EmployeeID.String()),
	}
	if event.Recipient != "" {
		fields = append(fields, zap.String("recipient", event.Recipient))
	}
	for k, v := range event.Payload {
		fields = append(fields, zap.String("payload."+k, v))
	}
	logger.Info(ctx, "notification event", fields...)
}

func (LogPublisher) Close() error { return nil }
