package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ednc-edu/course-roster-api/internal/service"
	"github.com/ednc-edu/course-roster-api/pkg/response"
)

// CatalogHandler exposes the anonymous course catalog. No authorization
// code runs on these paths.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List godoc
// @Summary List public courses
// @Description Browse the catalog without authentication
// @Tags Catalog
// @Produce json
// @Param search query string false "Filter by course or instructor name"
// @Param limit query int false "Maximum result count"
// @Success 200 {object} response.Envelope
// @Router /courses/public [get]
func (h *CatalogHandler) List(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	courses, err := h.catalog.List(c.Request.Context(), search, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, "")
}

// Count godoc
// @Summary Count public courses
// @Tags Catalog
// @Produce json
// @Param search query string false "Filter by course or instructor name"
// @Success 200 {object} response.Envelope
// @Router /courses/public/count [get]
func (h *CatalogHandler) Count(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))

	total, err := h.catalog.Count(c.Request.Context(), search)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"total": total}, "")
}
