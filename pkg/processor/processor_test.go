package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
)

type fakeEnroller struct {
	outcome *models.EnrollmentOutcome
	calls   []*models.User
}

func (f *fakeEnroller) Enroll(ctx context.Context, tenantID string, user *models.User) *models.EnrollmentOutcome {
	f.calls = append(f.calls, user)
	if f.outcome != nil {
		return f.outcome
	}
	return &models.EnrollmentOutcome{Status: models.EnrollmentAdded, TenantID: tenantID, UserID: user.ID}
}

type fakeEmitter struct {
	err      error
	outcomes []*models.EnrollmentOutcome
}

func (f *fakeEmitter) EmitOutcome(ctx context.Context, outcome *models.EnrollmentOutcome) error {
	if f.err != nil {
		return f.err
	}
	f.outcomes = append(f.outcomes, outcome)
	return nil
}

type fakeSubscriber struct {
	err    error
	emails []string
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, email, firstName, lastName string) error {
	if f.err != nil {
		return f.err
	}
	f.emails = append(f.emails, email)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func userCreatedMessage(t *testing.T, tenantID string) *kafka.IncomingMessage {
	t.Helper()

	value, err := json.Marshal(map[string]any{
		"event_type": "user.created",
		"tenant_id":  tenantID,
		"user": map[string]any{
			"id":         "u1",
			"email":      "jo@example.com",
			"first_name": "Jo",
			"last_name":  "Byrne",
			"location":   "County Cork",
		},
	})
	require.NoError(t, err)

	msg := &kafka.IncomingMessage{Value: value, Headers: map[string]string{}}
	require.NoError(t, msg.ParseUserEvent())
	return msg
}

func TestHandleMessageEnrollsAndEmits(t *testing.T) {
	engine := &fakeEnroller{}
	emitter := &fakeEmitter{}
	subscriber := &fakeSubscriber{}
	p := NewProcessor(testLogger(), engine, emitter, subscriber)

	err := p.HandleMessage(context.Background(), userCreatedMessage(t, "tenant-1"))

	require.NoError(t, err)
	require.Len(t, engine.calls, 1)
	assert.Equal(t, "u1", engine.calls[0].ID)
	assert.Equal(t, "County Cork", engine.calls[0].Location)
	require.Len(t, emitter.outcomes, 1)
	assert.Equal(t, models.EnrollmentAdded, emitter.outcomes[0].Status)
	assert.Equal(t, []string{"jo@example.com"}, subscriber.emails)
}

func TestHandleMessageEmitErrorIsRetried(t *testing.T) {
	engine := &fakeEnroller{}
	emitter := &fakeEmitter{err: errors.New("broker down")}
	p := NewProcessor(testLogger(), engine, emitter, nil)

	err := p.HandleMessage(context.Background(), userCreatedMessage(t, "tenant-1"))

	assert.Error(t, err)
}

func TestHandleMessageMissingTenantIsSkipped(t *testing.T) {
	engine := &fakeEnroller{}
	emitter := &fakeEmitter{}
	p := NewProcessor(testLogger(), engine, emitter, nil)

	err := p.HandleMessage(context.Background(), userCreatedMessage(t, ""))

	assert.NoError(t, err)
	assert.Empty(t, engine.calls)
	assert.Empty(t, emitter.outcomes)
}

func TestHandleMessageSubscribeFailureDoesNotFail(t *testing.T) {
	engine := &fakeEnroller{}
	emitter := &fakeEmitter{}
	subscriber := &fakeSubscriber{err: errors.New("mailchimp 500")}
	p := NewProcessor(testLogger(), engine, emitter, subscriber)

	err := p.HandleMessage(context.Background(), userCreatedMessage(t, "tenant-1"))

	assert.NoError(t, err)
	assert.Len(t, emitter.outcomes, 1)
}

func TestHandleMessageUpdatedEventDoesNotSubscribe(t *testing.T) {
	value, err := json.Marshal(map[string]any{
		"event_type": "user.updated",
		"tenant_id":  "tenant-1",
		"user":       map[string]any{"id": "u1", "email": "jo@example.com", "location": "Cork"},
	})
	require.NoError(t, err)
	msg := &kafka.IncomingMessage{Value: value, Headers: map[string]string{}}
	require.NoError(t, msg.ParseUserEvent())

	engine := &fakeEnroller{}
	emitter := &fakeEmitter{}
	subscriber := &fakeSubscriber{}
	p := NewProcessor(testLogger(), engine, emitter, subscriber)

	require.NoError(t, p.HandleMessage(context.Background(), msg))
	assert.Len(t, engine.calls, 1)
	assert.Empty(t, subscriber.emails)
}

func TestParseUserEventRejectsUnknownTypes(t *testing.T) {
	msg := &kafka.IncomingMessage{Value: []byte(`{"event_type":"order.created","user":{"id":"u1"}}`)}
	assert.Error(t, msg.ParseUserEvent())

	msg = &kafka.IncomingMessage{Value: []byte(`{"event_type":"user.created","user":{}}`)}
	assert.Error(t, msg.ParseUserEvent())

	msg = &kafka.IncomingMessage{Value: []byte(`not json`)}
	assert.Error(t, msg.ParseUserEvent())
}
