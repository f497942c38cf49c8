// Package processor handles incoming user lifecycle messages. Each message is
// run through the enrollment engine and the outcome is published downstream.
package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Enroller runs the enrollment decision for a user
type Enroller interface {
	Enroll(ctx context.Context, tenantID string, user *models.User) *models.EnrollmentOutcome
}

// OutcomeEmitter publishes enrollment outcome events
type OutcomeEmitter interface {
	EmitOutcome(ctx context.Context, outcome *models.EnrollmentOutcome) error
}

// Subscriber adds a user to the mailing list
type Subscriber interface {
	Subscribe(ctx context.Context, email, firstName, lastName string) error
}

// Processor handles user event processing
type Processor struct {
	logger     ectologger.Logger
	engine     Enroller
	emitter    OutcomeEmitter
	subscriber Subscriber // nil when the mailing list is disabled
}

// NewProcessor creates a new user event processor
func NewProcessor(logger ectologger.Logger, engine Enroller, emitter OutcomeEmitter, subscriber Subscriber) *Processor {
	return &Processor{
		logger:     logger,
		engine:     engine,
		emitter:    emitter,
		subscriber: subscriber,
	}
}

// HandleMessage processes a single user event. A nil return commits the
// message; errors leave it uncommitted for redelivery.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	event := msg.UserEvent
	if event == nil {
		return fmt.Errorf("message has no parsed user event")
	}

	tenantID := msg.GetTenantID()
	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"tenant_id":  tenantID,
		"user_id":    event.User.ID,
	})

	if tenantID == "" {
		// Permanently invalid; skip instead of retrying forever
		log.Error("User event is missing tenant id")
		return nil
	}

	user := &models.User{
		ID:        event.User.ID,
		TenantID:  tenantID,
		Email:     event.User.Email,
		FirstName: event.User.FirstName,
		LastName:  event.User.LastName,
		Location:  event.User.Location,
	}

	outcome := p.engine.Enroll(ctx, tenantID, user)

	if err := p.emitter.EmitOutcome(ctx, outcome); err != nil {
		log.WithError(err).Error("Failed to emit enrollment outcome")
		return err
	}

	// Newsletter signup is best-effort; failures never block the pipeline
	if p.subscriber != nil && event.EventType == kafka.EventTypeUserCreated && user.Email != "" {
		if err := p.subscriber.Subscribe(ctx, user.Email, user.FirstName, user.LastName); err != nil {
			log.WithError(err).Warnf("Failed to subscribe user to mailing list")
		}
	}

	log.WithFields(map[string]any{"status": outcome.Status}).Info("Processed user event")
	return nil
}
