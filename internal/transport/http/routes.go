package http

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/rechat/reso-odata/internal/oauth"
	"github.com/rechat/reso-odata/internal/odata/resources"
	platmw "github.com/rechat/reso-odata/internal/platform/middleware"
	"github.com/rechat/reso-odata/internal/redirect"
)

// New builds the full echo.Echo for the gateway: middleware chain, OData
// routes under /odata, the token endpoint, $metadata/service document, and
// the redirect collaborator, per spec.md §4.6.
func New(
	logger ectologger.Logger,
	driver *resources.Driver,
	tokenStore *oauth.Store,
	issuer *oauth.Issuer,
	redirectHandler *redirect.Handler,
) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = platmw.Error(logger)

	e.Use(otelecho.Middleware("reso-odata"))
	e.Use(platmw.Context())
	e.Use(platmw.Logger(logger))
	e.Use(middleware.Recover())

	redirectHandler.RegisterRoutes(e)

	odataGroup := e.Group("/odata")
	NewMetadataHandler().RegisterRoutes(odataGroup)
	oauth.NewHandler(issuer).RegisterRoutes(odataGroup)

	authed := odataGroup.Group("", oauth.Middleware(tokenStore, logger))
	NewODataHandler(driver).RegisterRoutes(authed)

	return e
}
