package grouptype

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository handles group type persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new group type repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new group type
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateGroupTypeRequest) (*models.GroupType, error) {
	ctx, span := tracing.StartSpan(ctx, "grouptype.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
		"name":      req.Name,
	})

	now := time.Now().UTC()
	groupType := &models.GroupType{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		IsHub:       false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("group_types")
	sb.Cols("id", "tenant_id", "name", "description", "is_hub", "created_at", "updated_at")
	sb.Values(groupType.ID, groupType.TenantID, groupType.Name, groupType.Description, groupType.IsHub, groupType.CreatedAt, groupType.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create group type")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create group type")
	}

	log.WithFields(map[string]any{"id": groupType.ID}).Info("Created group type")
	return groupType, nil
}

// Get retrieves a group type by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.GroupType, error) {
	ctx, span := tracing.StartSpan(ctx, "grouptype.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "is_hub", "created_at", "updated_at", "deleted_at")
	sb.From("group_types")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var groupType models.GroupType
	if err := r.db.GetContext(ctx, &groupType, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("group type %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get group type")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get group type")
	}

	return &groupType, nil
}

// List retrieves all group types for a tenant
func (r *Repository) List(ctx context.Context, tenantID string, page, pageSize int) ([]models.GroupType, int, error) {
	ctx, span := tracing.StartSpan(ctx, "grouptype.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("group_types")
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count group types")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count group types")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "is_hub", "created_at", "updated_at", "deleted_at")
	sb.From("group_types")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var groupTypes []models.GroupType
	if err := r.db.SelectContext(ctx, &groupTypes, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list group types")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list group types")
	}

	return groupTypes, totalCount, nil
}

// Update updates a group type
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateGroupTypeRequest) (*models.GroupType, error) {
	ctx, span := tracing.StartSpan(ctx, "grouptype.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	existing.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("group_types")
	sb.Set(
		sb.Assign("name", existing.Name),
		sb.Assign("description", existing.Description),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update group type")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update group type")
	}

	return existing, nil
}

// Delete soft deletes a group type
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "grouptype.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("group_types")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete group type")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete group type")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("group type %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted group type")
	return nil
}

// GetHubType returns the tenant's hub type, or nil when none is configured.
// A partial unique index guarantees at most one per tenant.
func (r *Repository) GetHubType(ctx context.Context, tenantID string) (*models.GroupType, error) {
	ctx, span := tracing.StartSpan(ctx, "grouptype.Repository.GetHubType")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "is_hub", "created_at", "updated_at", "deleted_at")
	sb.From("group_types")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("is_hub", true),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var groupType models.GroupType
	if err := r.db.GetContext(ctx, &groupType, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get hub type")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get hub type")
	}

	return &groupType, nil
}

// SetHub designates a group type as the tenant hub type, clearing any
// previous designation in the same transaction.
func (r *Repository) SetHub(ctx context.Context, tenantID string, id string) (*models.GroupType, error) {
	ctx, span := tracing.StartSpan(ctx, "grouptype.Repository.SetHub")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "SetHub",
		"tenant_id": tenantID,
		"id":        id,
	})

	existing, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()

	clearSb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	clearSb.Update("group_types")
	clearSb.Set(
		clearSb.Assign("is_hub", false),
		clearSb.Assign("updated_at", now),
	)
	clearSb.Where(
		clearSb.Equal("tenant_id", tenantID),
		clearSb.Equal("is_hub", true),
	)

	query, args := clearSb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to clear hub designation")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to set hub type")
	}

	setSb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	setSb.Update("group_types")
	setSb.Set(
		setSb.Assign("is_hub", true),
		setSb.Assign("updated_at", now),
	)
	setSb.Where(
		setSb.Equal("id", id),
		setSb.Equal("tenant_id", tenantID),
		setSb.IsNull("deleted_at"),
	)

	query, args = setSb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to set hub designation")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to set hub type")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to set hub type")
	}

	existing.IsHub = true
	existing.UpdatedAt = now

	log.Info("Designated hub type")
	return existing, nil
}
