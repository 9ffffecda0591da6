package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreamshare/dreamshare/internal/middleware"
	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/internal/services"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Dream{},
		&models.Like{},
		&models.Comment{},
	))

	log := logger.NewLogger()
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	userService := services.NewUserService(userRepo, followRepo, nil, log)

	authHandler := NewAuthHandler(userService, testSecret, time.Hour)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/auth/register", authHandler.Register)
	router.POST("/api/v1/auth/login", authHandler.Login)
	router.GET("/api/v1/auth/me",
		middleware.NewJWTAuth(&middleware.JWTConfig{Secret: testSecret}),
		authHandler.Me,
	)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}, token string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	router := setupAuthRouter(t)

	register := postJSON(router, "/api/v1/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret123",
	}, "")
	require.Equal(t, http.StatusCreated, register.Code)

	var registered struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(register.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.NotContains(t, register.Body.String(), "supersecret123")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		w := postJSON(router, "/api/v1/auth/register", gin.H{
			"username": "alice",
			"email":    "alice2@example.com",
			"password": "supersecret123",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password rejected by binding", func(t *testing.T) {
		w := postJSON(router, "/api/v1/auth/register", gin.H{
			"username": "bob",
			"email":    "bob@example.com",
			"password": "short",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login and me", func(t *testing.T) {
		login := postJSON(router, "/api/v1/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": "supersecret123",
		}, "")
		require.Equal(t, http.StatusOK, login.Code)

		var loggedIn struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(login.Body.Bytes(), &loggedIn))
		require.NotEmpty(t, loggedIn.Token)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		w := postJSON(router, "/api/v1/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": "not-the-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me without token unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
