package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamshare/dreamshare/internal/config"
	"github.com/dreamshare/dreamshare/internal/handlers"
	"github.com/dreamshare/dreamshare/internal/middleware"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/internal/services"
	"github.com/dreamshare/dreamshare/pkg/cache"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting DreamShare API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	userEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.UserEvents)
	defer userEventsProducer.Close()

	dreamEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.DreamEvents)
	defer dreamEventsProducer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	dreamRepo := repository.NewDreamRepository(db.DB)
	tagRepo := repository.NewTagRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)

	userService := services.NewUserService(userRepo, followRepo, userEventsProducer, logger)
	followService := services.NewFollowService(userRepo, followRepo, userEventsProducer, logger)
	tagService := services.NewTagService(tagRepo, redisClient, cfg.Tags.PopularCacheTTL, logger)
	dreamService := services.NewDreamService(dreamRepo, userRepo, likeRepo, commentRepo, tagService, redisClient, dreamEventsProducer, logger)
	likeService := services.NewLikeService(likeRepo, dreamRepo, dreamEventsProducer, logger)
	commentService := services.NewCommentService(commentRepo, dreamRepo, userRepo, dreamEventsProducer, logger)

	authHandler := handlers.NewAuthHandler(userService, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	userHandler := handlers.NewUserHandler(userService, followService, dreamService)
	dreamHandler := handlers.NewDreamHandler(dreamService, likeService, commentService, cfg.Trending.TopLimit)
	tagHandler := handlers.NewTagHandler(tagService, dreamService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	jwtConfig := &middleware.JWTConfig{Secret: cfg.JWT.Secret}

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public reads. Optional auth lets owners see their own
		// private dreams through the same routes.
		dreams := api.Group("/dreams")
		{
			dreams.GET("", dreamHandler.Feed)
			dreams.GET("/search", dreamHandler.Search)
			dreams.GET("/trending", dreamHandler.Trending)
			dreams.GET("/:id", middleware.OptionalJWTAuth(jwtConfig), dreamHandler.Get)
			dreams.GET("/:id/comments", middleware.OptionalJWTAuth(jwtConfig), dreamHandler.ListComments)
		}

		users := api.Group("/users")
		{
			users.GET("/:id", userHandler.Profile)
			users.GET("/:id/dreams", userHandler.Dreams)
			users.GET("/:id/followers", userHandler.Followers)
			users.GET("/:id/following", userHandler.Following)
		}

		tags := api.Group("/tags")
		{
			tags.GET("/popular", tagHandler.Popular)
			tags.GET("/:name/dreams", tagHandler.Dreams)
		}

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(jwtConfig))
		{
			protected.GET("/auth/me", authHandler.Me)
			protected.PUT("/users/profile", authHandler.UpdateProfile)
			protected.POST("/users/:id/follow", userHandler.ToggleFollow)

			protected.POST("/dreams", dreamHandler.Create)
			protected.PUT("/dreams/:id", dreamHandler.Update)
			protected.DELETE("/dreams/:id", dreamHandler.Delete)
			protected.POST("/dreams/:id/like", dreamHandler.ToggleLike)
			protected.POST("/dreams/:id/comments", dreamHandler.AddComment)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	if err := os.MkdirAll("configs", 0755); err != nil {
		log.Printf("Failed to create configs directory: %v", err)
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "dreamuser"
  password: "dreampass"
  dbname: "dreamshare"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    user_events: "user-events"
    dream_events: "dream-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

tags:
  popular_cache_ttl: 5m

trending:
  max_entries: 500
  top_limit: 20`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
