package oauth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rechat/reso-odata/internal/platform/tracing"
)

// Handler exposes the OAuth2 token endpoint, per spec.md §4.6/§8 scenario 2.
type Handler struct {
	issuer *Issuer
}

func NewHandler(issuer *Issuer) *Handler {
	return &Handler{issuer: issuer}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/token", h.Token)
}

// Token dispatches client_credentials and refresh_token grants. Any other
// grant_type fails with RFC 6749's unsupported_grant_type.
func (h *Handler) Token(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "oauth.Token")
	defer span.End()
	ctx := c.Request().Context()

	grantType := c.FormValue("grant_type")

	switch grantType {
	case "client_credentials":
		resp, grantErr := h.issuer.IssueClientCredentials(ctx, c.FormValue("client_id"), c.FormValue("client_secret"))
		if grantErr != nil {
			return c.JSON(statusForGrantError(grantErr), grantErr.JSON())
		}
		return c.JSON(http.StatusOK, resp)

	case "refresh_token":
		resp, grantErr := h.issuer.RefreshAccessToken(ctx, c.FormValue("refresh_token"))
		if grantErr != nil {
			return c.JSON(statusForGrantError(grantErr), grantErr.JSON())
		}
		return c.JSON(http.StatusOK, resp)

	default:
		err := &GrantError{Slug: "unsupported_grant_type"}
		return c.JSON(http.StatusBadRequest, err.JSON())
	}
}

func statusForGrantError(err *GrantError) int {
	switch err.Slug {
	case "invalid_client":
		return http.StatusUnauthorized
	case "invalid_grant":
		return http.StatusBadRequest
	case "server_error":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
