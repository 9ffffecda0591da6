package handlers

import (
	"net/http"
	"strconv"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/services"
	"github.com/gin-gonic/gin"
)

const defaultPopularTagLimit = 10

type TagHandler struct {
	tagService   *services.TagService
	dreamService *services.DreamService
}

func NewTagHandler(tagService *services.TagService, dreamService *services.DreamService) *TagHandler {
	return &TagHandler{
		tagService:   tagService,
		dreamService: dreamService,
	}
}

func (h *TagHandler) Popular(c *gin.Context) {
	limit := defaultPopularTagLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	tags, err := h.tagService.Popular(c.Request.Context(), limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *TagHandler) Dreams(c *gin.Context) {
	dreams, err := h.dreamService.ByTag(c.Request.Context(), c.Param("name"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dreams": dreams})
}
