package tenant

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Register registers tenant routes
func Register(g *echo.Group) {
	g.DELETE("/:tenant_id", DeleteTenantData)
}

// DeleteTenantDataResponse reports the rows removed per table
type DeleteTenantDataResponse struct {
	TenantID     string         `json:"tenant_id"`
	RowsDeleted  map[string]int `json:"rows_deleted"`
	TotalDeleted int            `json:"total_deleted"`
}

// DeleteTenantData hard deletes all data for a tenant. Tables are cleared
// child-first so foreign keys never block the sweep.
func DeleteTenantData(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "tenant_handler.DeleteTenantData")
	defer span.End()

	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	// The header tenant must match the path; one tenant cannot sweep another
	if headerTenant := ctxmiddleware.GetTenantID(ctx); headerTenant != "" && headerTenant != tenantID {
		return httperror.NewHTTPError(http.StatusForbidden, "tenant_id does not match request context")
	}

	ctx, db, err := ectoinject.GetContext[database.DB](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get database")
	}

	tables := []string{
		"group_members",
		"groups",
		"group_types",
		"users",
	}

	rowsDeleted := make(map[string]int, len(tables))
	total := 0
	for _, table := range tables {
		result, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE tenant_id = $1", tenantID)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete from "+table)
		}
		rows, _ := result.RowsAffected()
		rowsDeleted[table] = int(rows)
		total += int(rows)
	}

	return c.JSON(http.StatusOK, DeleteTenantDataResponse{
		TenantID:     tenantID,
		RowsDeleted:  rowsDeleted,
		TotalDeleted: total,
	})
}
