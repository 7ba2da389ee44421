package http

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestOdataRootFromRequest(t *testing.T) {
	e := echo.New()

	t.Run("should default to http when there is no TLS and no forwarded proto", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/odata/Property", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, "http://example.com/odata", odataRootFromRequest(c))
	})

	t.Run("should honor X-Forwarded-Proto from a reverse proxy", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/odata/Property", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, "https://example.com/odata", odataRootFromRequest(c))
	})
}
