package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	e := echo.New()

	t.Run("should pass through the handler's response on success", func(t *testing.T) {
		next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
		req := httptest.NewRequest(http.MethodGet, "/odata/Property", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := Logger(testLogger())(next)(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("should route a handler error to echo's error handler without re-raising", func(t *testing.T) {
		next := func(c echo.Context) error { return errors.New("boom") }
		req := httptest.NewRequest(http.MethodGet, "/odata/Property", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Echo().HTTPErrorHandler = Error(testLogger())

		err := Logger(testLogger())(next)(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
