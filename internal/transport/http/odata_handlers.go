// Package http is the HTTP surface (C6): routing, OData headers, service
// document, and the error/auth middleware chain, per spec.md §4.6.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rechat/reso-odata/internal/odata/resources"
	"github.com/rechat/reso-odata/internal/platform/metrics"
	"github.com/rechat/reso-odata/internal/platform/tracing"
)

// ODataHandler serves the Property/Member/Office collection and entity
// routes against a shared resources.Driver.
type ODataHandler struct {
	driver *resources.Driver
}

func NewODataHandler(driver *resources.Driver) *ODataHandler {
	return &ODataHandler{driver: driver}
}

func (h *ODataHandler) RegisterRoutes(g *echo.Group) {
	for _, spec := range []resources.Spec{resources.PropertySpec, resources.MemberSpec, resources.OfficeSpec} {
		spec := spec
		g.GET("/"+spec.Set, func(c echo.Context) error { return h.list(c, spec) })
		g.GET("/"+spec.Set+"(:key)", func(c echo.Context) error { return h.get(c, spec) })
	}
}

func (h *ODataHandler) list(c echo.Context, spec resources.Spec) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "odata.List."+spec.Set)
	defer span.End()

	start := time.Now()
	odataRoot := odataRootFromRequest(c)

	envelope, err := h.driver.List(ctx, spec, c.QueryParams(), odataRoot)
	metrics.QueryDuration.WithLabelValues(spec.Set, "list").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(spec.Set, "list", "error").Inc()
		return err
	}

	metrics.RequestsTotal.WithLabelValues(spec.Set, "list", "ok").Inc()
	c.Response().Header().Set("OData-Version", "4.0")
	return c.JSON(http.StatusOK, envelope)
}

func (h *ODataHandler) get(c echo.Context, spec resources.Spec) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "odata.Get."+spec.Set)
	defer span.End()

	start := time.Now()
	odataRoot := odataRootFromRequest(c)

	entity, err := h.driver.Get(ctx, spec, c.Param("key"), c.QueryParams(), odataRoot)
	metrics.QueryDuration.WithLabelValues(spec.Set, "get").Observe(time.Since(start).Seconds())
	if err != nil {
		var notFound *resources.NotFoundError
		if errors.As(err, &notFound) {
			metrics.RequestsTotal.WithLabelValues(spec.Set, "get", "not_found").Inc()
			return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
		}
		metrics.RequestsTotal.WithLabelValues(spec.Set, "get", "error").Inc()
		return err
	}

	metrics.RequestsTotal.WithLabelValues(spec.Set, "get", "ok").Inc()
	c.Response().Header().Set("OData-Version", "4.0")
	return c.JSON(http.StatusOK, entity)
}

// odataRootFromRequest derives the "https://host/odata" root from the
// incoming request, honoring a reverse proxy's X-Forwarded-Proto.
func odataRootFromRequest(c echo.Context) string {
	scheme := "http"
	if c.Request().TLS != nil {
		scheme = "https"
	}
	if proto := c.Request().Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request().Host + "/odata"
}
