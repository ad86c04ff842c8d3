package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cookbook/backend/internal/types"
)

// FacetHandler serves the fixed choice lists used by recipe forms and filters.
type FacetHandler struct{}

func NewFacetHandler() *FacetHandler {
	return &FacetHandler{}
}

func (h *FacetHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/facets", h.ListFacets)
}

func (h *FacetHandler) ListFacets(c *gin.Context) {
	c.JSON(http.StatusOK, types.AllFacets())
}
