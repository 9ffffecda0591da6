package handlers

import (
	"net/http"
	"strconv"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/middleware"
	"github.com/dreamshare/dreamshare/internal/services"
	"github.com/gin-gonic/gin"
)

type DreamHandler struct {
	dreamService   *services.DreamService
	likeService    *services.LikeService
	commentService *services.CommentService
	trendingLimit  int
}

func NewDreamHandler(
	dreamService *services.DreamService,
	likeService *services.LikeService,
	commentService *services.CommentService,
	trendingLimit int,
) *DreamHandler {
	return &DreamHandler{
		dreamService:   dreamService,
		likeService:    likeService,
		commentService: commentService,
		trendingLimit:  trendingLimit,
	}
}

func (h *DreamHandler) Create(c *gin.Context) {
	var req services.CreateDreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dream, err := h.dreamService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Dream created successfully",
		"dream":   dream,
	})
}

func (h *DreamHandler) Get(c *gin.Context) {
	dream, err := h.dreamService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dream)
}

func (h *DreamHandler) Update(c *gin.Context) {
	var req services.UpdateDreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dream, err := h.dreamService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dream updated successfully",
		"dream":   dream,
	})
}

func (h *DreamHandler) Delete(c *gin.Context) {
	if err := h.dreamService.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dream deleted successfully"})
}

func (h *DreamHandler) Feed(c *gin.Context) {
	dreams, err := h.dreamService.Feed(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dreams": dreams})
}

func (h *DreamHandler) Search(c *gin.Context) {
	dreams, err := h.dreamService.Search(
		c.Request.Context(),
		c.Query("q"),
		c.Query("tag"),
		c.Query("sort"),
	)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dreams": dreams})
}

func (h *DreamHandler) Trending(c *gin.Context) {
	limit := h.trendingLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	dreams, err := h.dreamService.Trending(c.Request.Context(), limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dreams": dreams})
}

func (h *DreamHandler) ToggleLike(c *gin.Context) {
	liked, count, err := h.likeService.Toggle(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":      liked,
		"like_count": count,
	})
}

type addCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *DreamHandler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Add(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Content)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (h *DreamHandler) ListComments(c *gin.Context) {
	oldestFirst := c.Query("order") == "oldest"

	comments, err := h.commentService.List(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), oldestFirst)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
