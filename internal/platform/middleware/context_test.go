package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	appctx "github.com/rechat/reso-odata/internal/platform/context"
)

func TestContext(t *testing.T) {
	e := echo.New()
	var seen struct {
		requestID, method, route string
	}
	next := func(c echo.Context) error {
		ctx := c.Request().Context()
		seen.requestID = appctx.GetRequestID(ctx)
		seen.method = appctx.GetMethod(ctx)
		seen.route = appctx.GetRoute(ctx)
		return c.NoContent(http.StatusOK)
	}

	t.Run("should generate a request id when none was supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/odata/Property", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := Context()(next)(c)

		assert.NoError(t, err)
		assert.NotEmpty(t, seen.requestID)
		assert.Equal(t, http.MethodGet, seen.method)
		assert.Equal(t, "/odata/Property", seen.route)
		assert.Equal(t, seen.requestID, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("should reuse an incoming X-Request-Id header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/odata/Property", nil)
		req.Header.Set(echo.HeaderXRequestID, "fixed-id")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := Context()(next)(c)

		assert.NoError(t, err)
		assert.Equal(t, "fixed-id", seen.requestID)
		assert.Equal(t, "fixed-id", rec.Header().Get(echo.HeaderXRequestID))
	})
}
