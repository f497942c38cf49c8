// Package enrollment joins users to hub groups by fuzzy-matching their
// free-text location against leaf hub group names.
package enrollment

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// DefaultThreshold is the minimum similarity score (inclusive) for a join
const DefaultThreshold = 98.0

// GroupSource resolves the current leaf hub groups for a tenant
type GroupSource interface {
	ListLeafGroups(ctx context.Context, tenantID string) ([]models.Group, error)
}

// MembershipStore manages group membership rows
type MembershipStore interface {
	IsMember(ctx context.Context, tenantID, groupID, userID string) (bool, error)
	Join(ctx context.Context, tenantID, groupID, userID string) error
	UpdateRole(ctx context.Context, tenantID, groupID, userID, role string) error
}

// Engine decides and executes hub enrollment. It holds no per-request state;
// groups are re-resolved on every call so changes take effect immediately.
type Engine struct {
	groups    GroupSource
	members   MembershipStore
	scorer    *Scorer
	logger    ectologger.Logger
	threshold float64
}

// NewEngine creates a new enrollment engine
func NewEngine(groups GroupSource, members MembershipStore, logger ectologger.Logger, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{
		groups:    groups,
		members:   members,
		scorer:    NewScorer(),
		logger:    logger,
		threshold: threshold,
	}
}

// LocationCandidates splits free-text location on commas and normalizes each
// segment, dropping any that normalize to nothing. Order is preserved.
func LocationCandidates(raw string) []string {
	parts := strings.Split(raw, ",")
	candidates := make([]string, 0, len(parts))
	for _, part := range parts {
		normalized := normalizers.NormalizeLocation(part)
		if normalized == "" {
			continue
		}
		candidates = append(candidates, normalized)
	}
	return candidates
}

// Enroll attempts to join the user to the best-matching leaf hub group.
// Every attempt returns exactly one outcome; expected conditions are reported
// as skip statuses, and only store failures produce ERROR.
func (e *Engine) Enroll(ctx context.Context, tenantID string, user *models.User) *models.EnrollmentOutcome {
	ctx, span := tracing.StartSpan(ctx, "enrollment.Engine.Enroll")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"user_id":   user.ID,
	})

	outcome := e.evaluate(ctx, tenantID, user)
	if outcome.Status != models.EnrollmentAdded {
		log.Info(outcome.Describe())
		return outcome
	}

	if err := e.members.Join(ctx, tenantID, outcome.GroupID, user.ID); err != nil {
		outcome.Status = models.EnrollmentError
		outcome.Message = err.Error()
		log.WithError(err).Error("Failed to join group")
		return outcome
	}

	// Re-assert the default role after the join. Sequential, not
	// transactional; a failure here still reports ERROR without undoing the
	// join.
	if err := e.members.UpdateRole(ctx, tenantID, outcome.GroupID, user.ID, models.RoleMember); err != nil {
		outcome.Status = models.EnrollmentError
		outcome.Message = err.Error()
		log.WithError(err).Error("Failed to set member role")
		return outcome
	}

	log.WithFields(map[string]any{
		"group_id": outcome.GroupID,
		"score":    outcome.Score,
	}).Info(outcome.Describe())
	return outcome
}

// Preview evaluates the enrollment decision without joining. The returned
// outcome carries ADDED when a join would happen.
func (e *Engine) Preview(ctx context.Context, tenantID string, user *models.User) *models.EnrollmentOutcome {
	ctx, span := tracing.StartSpan(ctx, "enrollment.Engine.Preview")
	defer span.End()

	return e.evaluate(ctx, tenantID, user)
}

// evaluate runs the decision state machine up to (but not including) the join
func (e *Engine) evaluate(ctx context.Context, tenantID string, user *models.User) *models.EnrollmentOutcome {
	outcome := &models.EnrollmentOutcome{
		TenantID: tenantID,
		UserID:   user.ID,
		Location: user.Location,
	}

	if user.Location == "" {
		outcome.Status = models.EnrollmentSkippedNoLocation
		return outcome
	}

	groups, err := e.groups.ListLeafGroups(ctx, tenantID)
	if err != nil {
		outcome.Status = models.EnrollmentError
		outcome.Message = err.Error()
		return outcome
	}
	if len(groups) == 0 {
		outcome.Status = models.EnrollmentSkippedNoGroups
		return outcome
	}

	if normalizers.NormalizeLocation(user.Location) == "" {
		outcome.Status = models.EnrollmentSkippedEmptyLocation
		return outcome
	}

	group, candidate, score := e.bestMatch(LocationCandidates(user.Location), groups)
	outcome.Score = score
	if group == nil || score < e.threshold {
		outcome.Status = models.EnrollmentSkippedLowConfidence
		if group != nil {
			outcome.GroupName = group.Name
		}
		return outcome
	}

	outcome.Candidate = candidate
	outcome.GroupID = group.ID
	outcome.GroupName = group.Name

	isMember, err := e.members.IsMember(ctx, tenantID, group.ID, user.ID)
	if err != nil {
		outcome.Status = models.EnrollmentError
		outcome.Message = err.Error()
		return outcome
	}
	if isMember {
		outcome.Status = models.EnrollmentSkippedAlreadyMember
		return outcome
	}

	outcome.Status = models.EnrollmentAdded
	return outcome
}

// bestMatch scores every candidate against every group name and keeps the
// running maximum. Ties keep the first pair found: groups in resolver order,
// candidates in extraction order.
func (e *Engine) bestMatch(candidates []string, groups []models.Group) (*models.Group, string, float64) {
	var best *models.Group
	var bestCandidate string
	var bestScore float64

	for i := range groups {
		name := normalizers.NormalizeLocation(groups[i].Name)
		if name == "" {
			continue
		}
		for _, candidate := range candidates {
			score := e.scorer.SimilarText(candidate, name)
			if score > bestScore {
				best = &groups[i]
				bestCandidate = candidate
				bestScore = score
			}
		}
	}

	return best, bestCandidate, bestScore
}
