// Package events publishes enrollment outcome events
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Event types emitted after an enrollment attempt
const (
	EventTypeEnrollmentAdded   = "enrollment.added"
	EventTypeEnrollmentSkipped = "enrollment.skipped"
	EventTypeEnrollmentError   = "enrollment.error"
)

// Publisher is the producer surface the emitter needs
type Publisher interface {
	PublishEnrollmentEvent(ctx context.Context, event *kafka.EnrollmentEvent) error
}

// Emitter publishes one event per enrollment outcome
type Emitter struct {
	producer Publisher
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitOutcome publishes the event matching the outcome status
func (e *Emitter) EmitOutcome(ctx context.Context, outcome *models.EnrollmentOutcome) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitOutcome")
	defer span.End()

	eventType := EventTypeEnrollmentSkipped
	switch outcome.Status {
	case models.EnrollmentAdded:
		eventType = EventTypeEnrollmentAdded
	case models.EnrollmentError:
		eventType = EventTypeEnrollmentError
	}

	event := &kafka.EnrollmentEvent{
		EventType: eventType,
		TenantID:  outcome.TenantID,
		UserID:    outcome.UserID,
		Status:    string(outcome.Status),
		GroupID:   outcome.GroupID,
		GroupName: outcome.GroupName,
		Score:     outcome.Score,
		Message:   outcome.Message,
	}

	if err := e.producer.PublishEnrollmentEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", eventType)
		return err
	}

	return nil
}
