package membership

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository handles group membership persistence. Membership rows are hard
// rows keyed on (group_id, user_id); a duplicate join violates the primary
// key rather than being absorbed here.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new membership repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// IsMember reports whether the user is a member of the group
func (r *Repository) IsMember(ctx context.Context, tenantID, groupID, userID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "membership.Repository.IsMember")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("group_members")
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.Equal("user_id", userID),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check membership")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check membership")
	}

	return count > 0, nil
}

// Join inserts a membership row with the default role
func (r *Repository) Join(ctx context.Context, tenantID, groupID, userID string) error {
	ctx, span := tracing.StartSpan(ctx, "membership.Repository.Join")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Join",
		"tenant_id": tenantID,
		"group_id":  groupID,
		"user_id":   userID,
	})

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("group_members")
	sb.Cols("group_id", "user_id", "tenant_id", "role", "created_at", "updated_at")
	sb.Values(groupID, userID, tenantID, models.RoleMember, now, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to join group")
		return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	log.Info("Joined group")
	return nil
}

// UpdateRole sets the member's role
func (r *Repository) UpdateRole(ctx context.Context, tenantID, groupID, userID, role string) error {
	ctx, span := tracing.StartSpan(ctx, "membership.Repository.UpdateRole")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("group_members")
	sb.Set(
		sb.Assign("role", role),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.Equal("user_id", userID),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update member role")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update member role")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("user %s is not a member of group %s", userID, groupID))
	}

	return nil
}

// Remove deletes a membership row
func (r *Repository) Remove(ctx context.Context, tenantID, groupID, userID string) error {
	ctx, span := tracing.StartSpan(ctx, "membership.Repository.Remove")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("group_members")
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.Equal("user_id", userID),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to remove member")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove member")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("user %s is not a member of group %s", userID, groupID))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"group_id": groupID,
		"user_id":  userID,
	}).Info("Removed member")
	return nil
}

// ListMembers returns all members of a group
func (r *Repository) ListMembers(ctx context.Context, tenantID, groupID string) ([]models.GroupMember, error) {
	ctx, span := tracing.StartSpan(ctx, "membership.Repository.ListMembers")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("group_id", "user_id", "tenant_id", "role", "created_at", "updated_at")
	sb.From("group_members")
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.Equal("tenant_id", tenantID),
	)
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()
	var members []models.GroupMember
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list members")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list members")
	}

	return members, nil
}
