package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tng-poetry-backend/internal/catalog"
	"tng-poetry-backend/internal/models"
)

// PoemHandler serves the read-only poem catalog.
type PoemHandler struct {
	poems *catalog.Catalog
}

// NewPoemHandler creates a new PoemHandler.
func NewPoemHandler(poems *catalog.Catalog) *PoemHandler {
	return &PoemHandler{poems: poems}
}

// ListPoems handles GET /poems?search=&theme=&category=
func (h *PoemHandler) ListPoems(c *gin.Context) {
	var filter models.PoemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid filter", Details: err.Error()})
		return
	}
	if filter.Theme != "" && filter.Theme != catalog.FilterAll && !models.Theme(filter.Theme).Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown theme", Details: filter.Theme})
		return
	}
	if filter.Category != "" && filter.Category != catalog.FilterAll && !models.Category(filter.Category).Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown category", Details: filter.Category})
		return
	}

	poems := h.poems.ListPoems(filter)
	c.JSON(http.StatusOK, PoemListResponse{Poems: poems, Total: len(poems)})
}

// GetPoem handles GET /poems/:poemId
func (h *PoemHandler) GetPoem(c *gin.Context) {
	poem, err := h.poems.GetPoem(c.Param("poemId"))
	if err != nil {
		if errors.Is(err, catalog.ErrPoemNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Poem not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong. Please try again."})
		return
	}
	c.JSON(http.StatusOK, poem)
}
