// Package redirect implements the redirect collaborator from spec.md §1: a
// thin HTTP path that maps an MLS number to a canonical listing URL and
// issues a 302. It shares the database gateway with the OData surface but
// is otherwise unspecified beyond that contract.
package redirect

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/rechat/reso-odata/internal/platform/database"
	"github.com/rechat/reso-odata/internal/platform/tracing"
)

// Handler serves GET /r/:mlsNumber by looking up the canonical listing URL
// in a backend view and redirecting to it.
type Handler struct {
	db database.DB
}

func NewHandler(db database.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/r/:mlsNumber", h.Redirect)
}

// Redirect queries the canonical-URL view for mlsNumber and issues a 302.
// A lookup miss is a 404 with the same error envelope the OData surface
// uses, since both surfaces share the HTTP error middleware.
func (h *Handler) Redirect(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "redirect.Redirect")
	defer span.End()

	mlsNumber := c.Param("mlsNumber")

	url, err := h.lookupURL(ctx, mlsNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "listing not found")
		}
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up canonical listing url")
	}

	return c.Redirect(http.StatusFound, url)
}

func (h *Handler) lookupURL(ctx context.Context, mlsNumber string) (string, error) {
	var url string
	err := h.db.GetContext(ctx, &url,
		`SELECT CANONICAL_URL FROM LISTING_URL_VIEW WHERE MLS_NUMBER = @mlsNumber`,
		sql.Named("mlsNumber", mlsNumber))
	return url, err
}
