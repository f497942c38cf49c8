package enrollment

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/user"
	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/enrollment"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Register registers enrollment routes under the user group
func Register(g *echo.Group) {
	g.POST("/:id/enroll", Enroll)
	g.GET("/:id/enroll/preview", Preview)
}

// EnrollmentResponse wraps an enrollment outcome with its rendered summary
type EnrollmentResponse struct {
	Outcome *models.EnrollmentOutcome `json:"outcome"`
	Summary string                    `json:"summary"`
}

// Enroll runs auto enrollment for the user and publishes the outcome.
// Enrollment never fails the request; the outcome carries the result.
func Enroll(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "enrollment_handler.Enroll")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, users, err := ectoinject.GetContext[*user.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	target, err := users.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	ctx, engine, err := ectoinject.GetContext[*enrollment.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get enrollment engine")
	}

	outcome := engine.Enroll(ctx, tenantID, target)

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err == nil && emitter != nil {
		// Publish failures surface in logs, not to the caller; the join
		// already happened.
		_ = emitter.EmitOutcome(ctx, outcome)
	}

	return c.JSON(http.StatusOK, EnrollmentResponse{
		Outcome: outcome,
		Summary: outcome.Describe(),
	})
}

// Preview evaluates enrollment for the user without joining any group or
// publishing an event
func Preview(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "enrollment_handler.Preview")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, users, err := ectoinject.GetContext[*user.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	target, err := users.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	ctx, engine, err := ectoinject.GetContext[*enrollment.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get enrollment engine")
	}

	outcome := engine.Preview(ctx, tenantID, target)

	return c.JSON(http.StatusOK, EnrollmentResponse{
		Outcome: outcome,
		Summary: outcome.Describe(),
	})
}
