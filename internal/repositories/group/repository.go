package group

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

const columns = "id, tenant_id, type_id, name, description, parent_id, created_at, updated_at, deleted_at"

// Repository handles group persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new group repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new group
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateGroupRequest) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
		"type_id":   req.TypeID,
		"name":      req.Name,
	})

	now := time.Now().UTC()
	group := &models.Group{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		TypeID:      req.TypeID,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("groups")
	sb.Cols("id", "tenant_id", "type_id", "name", "description", "parent_id", "created_at", "updated_at")
	sb.Values(group.ID, group.TenantID, group.TypeID, group.Name, group.Description, group.ParentID, group.CreatedAt, group.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create group")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create group")
	}

	log.WithFields(map[string]any{"id": group.ID}).Info("Created group")
	return group, nil
}

// Get retrieves a group by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("groups")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("group %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get group")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get group")
	}

	return &group, nil
}

// List retrieves all groups for a tenant, optionally filtered by type
func (r *Repository) List(ctx context.Context, tenantID string, typeID *string, page, pageSize int) ([]models.Group, int, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.List")
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
	countSb.From("groups")
	countWhere := []string{
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	}
	if typeID != nil {
		countWhere = append(countWhere, countSb.Equal("type_id", *typeID))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count groups")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count groups")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("groups")
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if typeID != nil {
		where = append(where, sb.Equal("type_id", *typeID))
	}
	sb.Where(where...)
	sb.OrderBy("created_at ASC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list groups")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list groups")
	}

	return groups, totalCount, nil
}

// Update updates a group
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateGroupRequest) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Update")
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
	if req.ParentID != nil {
		existing.ParentID = req.ParentID
	}
	existing.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("groups")
	sb.Set(
		sb.Assign("name", existing.Name),
		sb.Assign("description", existing.Description),
		sb.Assign("parent_id", existing.ParentID),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update group")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update group")
	}

	return existing, nil
}

// Delete soft deletes a group
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("groups")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete group")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete group")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("group %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted group")
	return nil
}

// ListLeafGroups returns the groups of the tenant's hub type that no other
// group references as a parent. When the tenant has no hub type configured
// the result is empty. Resolved fresh on every call; nothing is cached.
func (r *Repository) ListLeafGroups(ctx context.Context, tenantID string) ([]models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.ListLeafGroups")
	defer span.End()

	hubSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	hubSb.Select("id")
	hubSb.From("group_types")
	hubSb.Where(
		hubSb.Equal("tenant_id", tenantID),
		hubSb.Equal("is_hub", true),
		hubSb.IsNull("deleted_at"),
	)

	hubQuery, hubArgs := hubSb.Build()
	var hubTypeID string
	if err := r.db.GetContext(ctx, &hubTypeID, hubQuery, hubArgs...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to resolve hub type")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to resolve hub type")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("groups")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("type_id", hubTypeID),
		sb.IsNull("deleted_at"),
		"NOT EXISTS (SELECT 1 FROM groups c WHERE c.parent_id = groups.id AND c.deleted_at IS NULL)",
	)
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list leaf groups")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list leaf groups")
	}

	return groups, nil
}
