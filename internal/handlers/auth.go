package handlers

import (
	"net/http"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/middleware"
	"github.com/dreamshare/dreamshare/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *services.UserService
	jwtSecret   string
	jwtTTL      time.Duration
}

func NewAuthHandler(userService *services.UserService, jwtSecret string, jwtTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtSecret:   jwtSecret,
		jwtTTL:      jwtTTL,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Username, h.jwtSecret, h.jwtTTL)
	if err != nil {
		apperrors.Respond(c, apperrors.Wrap(apperrors.CodeInternal, "failed to issue token", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Username, h.jwtSecret, h.jwtTTL)
	if err != nil {
		apperrors.Respond(c, apperrors.Wrap(apperrors.CodeInternal, "failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.userService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
