package events

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
)

type fakePublisher struct {
	err    error
	events []*kafka.EnrollmentEvent
}

func (f *fakePublisher) PublishEnrollmentEvent(ctx context.Context, event *kafka.EnrollmentEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestEmitOutcomeEventTypes(t *testing.T) {
	tests := []struct {
		status    models.EnrollmentStatus
		eventType string
	}{
		{models.EnrollmentAdded, EventTypeEnrollmentAdded},
		{models.EnrollmentSkippedNoLocation, EventTypeEnrollmentSkipped},
		{models.EnrollmentSkippedNoGroups, EventTypeEnrollmentSkipped},
		{models.EnrollmentSkippedEmptyLocation, EventTypeEnrollmentSkipped},
		{models.EnrollmentSkippedLowConfidence, EventTypeEnrollmentSkipped},
		{models.EnrollmentSkippedAlreadyMember, EventTypeEnrollmentSkipped},
		{models.EnrollmentError, EventTypeEnrollmentError},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			publisher := &fakePublisher{}
			emitter := NewEmitter(publisher, testLogger())

			err := emitter.EmitOutcome(context.Background(), &models.EnrollmentOutcome{
				Status:   tt.status,
				TenantID: "tenant-1",
				UserID:   "u1",
			})

			require.NoError(t, err)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, tt.eventType, publisher.events[0].EventType)
			assert.Equal(t, string(tt.status), publisher.events[0].Status)
		})
	}
}

func TestEmitOutcomeCarriesMatchDetails(t *testing.T) {
	publisher := &fakePublisher{}
	emitter := NewEmitter(publisher, testLogger())

	err := emitter.EmitOutcome(context.Background(), &models.EnrollmentOutcome{
		Status:    models.EnrollmentAdded,
		TenantID:  "tenant-1",
		UserID:    "u1",
		GroupID:   "g1",
		GroupName: "Dublin",
		Score:     100,
	})

	require.NoError(t, err)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "g1", publisher.events[0].GroupID)
	assert.Equal(t, "Dublin", publisher.events[0].GroupName)
	assert.Equal(t, 100.0, publisher.events[0].Score)
}

func TestEmitOutcomePublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	emitter := NewEmitter(publisher, testLogger())

	err := emitter.EmitOutcome(context.Background(), &models.EnrollmentOutcome{
		Status: models.EnrollmentAdded,
	})

	assert.Error(t, err)
}
