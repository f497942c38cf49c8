package enrollment

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

type fakeGroupSource struct {
	groups []models.Group
	err    error
}

func (f *fakeGroupSource) ListLeafGroups(ctx context.Context, tenantID string) ([]models.Group, error) {
	return f.groups, f.err
}

type fakeMembershipStore struct {
	members     map[string]bool
	isMemberErr error
	joinErr     error
	roleErr     error

	joins []string
	roles []string
}

func (f *fakeMembershipStore) IsMember(ctx context.Context, tenantID, groupID, userID string) (bool, error) {
	if f.isMemberErr != nil {
		return false, f.isMemberErr
	}
	return f.members[groupID+":"+userID], nil
}

func (f *fakeMembershipStore) Join(ctx context.Context, tenantID, groupID, userID string) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	f.joins = append(f.joins, groupID+":"+userID)
	return nil
}

func (f *fakeMembershipStore) UpdateRole(ctx context.Context, tenantID, groupID, userID, role string) error {
	if f.roleErr != nil {
		return f.roleErr
	}
	f.roles = append(f.roles, groupID+":"+userID+":"+role)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestEngine(groups *fakeGroupSource, members *fakeMembershipStore) *Engine {
	return NewEngine(groups, members, testLogger(), 0)
}

func group(id, name string) models.Group {
	return models.Group{ID: id, TenantID: "tenant-1", TypeID: "hub-type", Name: name}
}

func user(id, location string) *models.User {
	return &models.User{ID: id, TenantID: "tenant-1", Email: id + "@example.com", Location: location}
}

func TestEnrollExactMatch(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Springfield")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Springfield"))

	require.Equal(t, models.EnrollmentAdded, outcome.Status)
	assert.Equal(t, "g1", outcome.GroupID)
	assert.Equal(t, "Springfield", outcome.GroupName)
	assert.Equal(t, "springfield", outcome.Candidate)
	assert.InDelta(t, 100.0, outcome.Score, 0.0001)
	assert.Equal(t, []string{"g1:u1"}, members.joins)
	assert.Equal(t, []string{"g1:u1:member"}, members.roles)
}

func TestEnrollNoLocation(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", ""))

	assert.Equal(t, models.EnrollmentSkippedNoLocation, outcome.Status)
	assert.Empty(t, members.joins)
}

func TestEnrollNoGroups(t *testing.T) {
	groups := &fakeGroupSource{}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))

	assert.Equal(t, models.EnrollmentSkippedNoGroups, outcome.Status)
	assert.Empty(t, members.joins)
}

func TestEnrollEmptyAfterNormalization(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "County, Ireland"))

	assert.Equal(t, models.EnrollmentSkippedEmptyLocation, outcome.Status)
	assert.Empty(t, members.joins)
}

func TestEnrollLowConfidence(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Dublin City")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Dubln"))

	require.Equal(t, models.EnrollmentSkippedLowConfidence, outcome.Status)
	assert.Equal(t, "Dublin City", outcome.GroupName)
	assert.Equal(t, "Dubln", outcome.Location)
	assert.InDelta(t, 1000.0/11.0, outcome.Score, 0.0001)
	assert.Empty(t, members.joins)
}

func TestEnrollNoisyLocation(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork, County Cork, Ireland"))

	require.Equal(t, models.EnrollmentAdded, outcome.Status)
	assert.Equal(t, "cork", outcome.Candidate)
	assert.InDelta(t, 100.0, outcome.Score, 0.0001)
}

func TestEnrollAlreadyMember(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{"g1:u1": true}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))

	assert.Equal(t, models.EnrollmentSkippedAlreadyMember, outcome.Status)
	assert.Equal(t, "g1", outcome.GroupID)
	assert.Empty(t, members.joins)
}

func TestEnrollIdempotent(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	first := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))
	require.Equal(t, models.EnrollmentAdded, first.Status)

	members.members["g1:u1"] = true
	second := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))
	assert.Equal(t, models.EnrollmentSkippedAlreadyMember, second.Status)
	assert.Len(t, members.joins, 1)
}

func TestEnrollTieBreakFirstGroupWins(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{
		group("g1", "Dublin"),
		group("g2", "Dublin City"), // normalizes to the same name
	}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Dublin"))

	require.Equal(t, models.EnrollmentAdded, outcome.Status)
	assert.Equal(t, "g1", outcome.GroupID)
}

func TestEnrollGroupSourceError(t *testing.T) {
	groups := &fakeGroupSource{err: errors.New("db down")}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))

	assert.Equal(t, models.EnrollmentError, outcome.Status)
	assert.Equal(t, "db down", outcome.Message)
}

func TestEnrollJoinError(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}, joinErr: errors.New("duplicate key value violates unique constraint")}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))

	assert.Equal(t, models.EnrollmentError, outcome.Status)
	assert.Contains(t, outcome.Message, "duplicate key")
}

func TestEnrollRoleErrorAfterJoin(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}, roleErr: errors.New("role update failed")}
	engine := newTestEngine(groups, members)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))

	// The join is not rolled back
	assert.Equal(t, models.EnrollmentError, outcome.Status)
	assert.Equal(t, []string{"g1:u1"}, members.joins)
}

func TestEnrollThresholdInclusive(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := NewEngine(groups, members, testLogger(), 100.0)

	outcome := engine.Enroll(context.Background(), "tenant-1", user("u1", "Cork"))

	assert.Equal(t, models.EnrollmentAdded, outcome.Status)
}

func TestPreviewDoesNotJoin(t *testing.T) {
	groups := &fakeGroupSource{groups: []models.Group{group("g1", "Cork")}}
	members := &fakeMembershipStore{members: map[string]bool{}}
	engine := newTestEngine(groups, members)

	outcome := engine.Preview(context.Background(), "tenant-1", user("u1", "Cork"))

	assert.Equal(t, models.EnrollmentAdded, outcome.Status)
	assert.Equal(t, "g1", outcome.GroupID)
	assert.Empty(t, members.joins)
	assert.Empty(t, members.roles)
}

func TestLocationCandidates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single segment",
			input:    "Cork",
			expected: []string{"cork"},
		},
		{
			name:     "noise segments dropped",
			input:    "Cork, County Cork, Ireland",
			expected: []string{"cork", "cork"},
		},
		{
			name:     "empty segments dropped",
			input:    ",, Dublin ,",
			expected: []string{"dublin"},
		},
		{
			name:     "all noise",
			input:    "County, Ireland",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocationCandidates(tt.input))
		})
	}
}

func TestOutcomeDescribe(t *testing.T) {
	added := &models.EnrollmentOutcome{
		Status:    models.EnrollmentAdded,
		UserID:    "u1",
		Candidate: "cork",
		GroupID:   "g1",
		GroupName: "Cork",
		Score:     100.0,
	}
	assert.Contains(t, added.Describe(), "100.00")
	assert.Contains(t, added.Describe(), "ADDED")

	low := &models.EnrollmentOutcome{
		Status:    models.EnrollmentSkippedLowConfidence,
		UserID:    "u1",
		Location:  "Dubln",
		GroupName: "Dublin",
		Score:     1000.0 / 11.0,
	}
	assert.Contains(t, low.Describe(), "90.91")
}
