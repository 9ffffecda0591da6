package handlers

import (
	"net/http"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/middleware"
	"github.com/dreamshare/dreamshare/internal/services"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   *services.UserService
	followService *services.FollowService
	dreamService  *services.DreamService
}

func NewUserHandler(
	userService *services.UserService,
	followService *services.FollowService,
	dreamService *services.DreamService,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		dreamService:  dreamService,
	}
}

func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.userService.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Dreams(c *gin.Context) {
	dreams, err := h.dreamService.ByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dreams": dreams})
}

func (h *UserHandler) ToggleFollow(c *gin.Context) {
	followed, err := h.followService.Toggle(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": followed})
}

func (h *UserHandler) Followers(c *gin.Context) {
	followers, err := h.followService.Followers(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (h *UserHandler) Following(c *gin.Context) {
	following, err := h.followService.Following(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}
