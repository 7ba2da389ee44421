package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rechat/reso-odata/internal/metadata"
	"github.com/rechat/reso-odata/internal/odata/resources"
)

// MetadataHandler serves /odata/ (service document) and /odata/$metadata
// (CSDL XML), per spec.md §6.
type MetadataHandler struct {
	csdl string
}

func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{
		csdl: metadata.Render(resources.PropertyMap, resources.MemberMap, resources.OfficeMap),
	}
}

func (h *MetadataHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ServiceDocument)
	g.GET("/", h.ServiceDocument)
	g.GET("/$metadata", h.Metadata)
}

func (h *MetadataHandler) ServiceDocument(c echo.Context) error {
	c.Response().Header().Set("OData-Version", "4.0")
	doc := metadata.NewServiceDocument(odataRootFromRequest(c))
	return c.JSON(http.StatusOK, doc)
}

func (h *MetadataHandler) Metadata(c echo.Context) error {
	c.Response().Header().Set("OData-Version", "4.0")
	return c.Blob(http.StatusOK, "application/xml", []byte(h.csdl))
}
