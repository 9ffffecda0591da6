package services

import (
	"context"
	"testing"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stubPublisher records published events so tests can assert on them
// without a running broker.
type stubPublisher struct {
	events []queue.Event
}

func (p *stubPublisher) Publish(_ context.Context, _ string, value interface{}) error {
	if event, ok := value.(queue.Event); ok {
		p.events = append(p.events, event)
	}
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
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

	return db
}

type testEnv struct {
	db       *gorm.DB
	producer *stubPublisher

	users    *UserService
	follows  *FollowService
	tags     *TagService
	dreams   *DreamService
	likes    *LikeService
	comments *CommentService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	log := logger.NewLogger()
	producer := &stubPublisher{}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	dreamRepo := repository.NewDreamRepository(db)
	tagRepo := repository.NewTagRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tags := NewTagService(tagRepo, nil, 0, log)

	return &testEnv{
		db:       db,
		producer: producer,
		users:    NewUserService(userRepo, followRepo, producer, log),
		follows:  NewFollowService(userRepo, followRepo, producer, log),
		tags:     tags,
		dreams:   NewDreamService(dreamRepo, userRepo, likeRepo, commentRepo, tags, nil, producer, log),
		likes:    NewLikeService(likeRepo, dreamRepo, producer, log),
		comments: NewCommentService(commentRepo, dreamRepo, userRepo, producer, log),
	}
}

func (e *testEnv) registerUser(t *testing.T, username, email string) *models.User {
	t.Helper()

	user, err := e.users.Register(context.Background(), &RegisterRequest{
		Username: username,
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createDream(t *testing.T, userID string, title string, isPublic bool, tags ...string) *DreamResponse {
	t.Helper()

	dream, err := e.dreams.Create(context.Background(), userID, &CreateDreamRequest{
		Title:    title,
		Content:  "content of " + title,
		IsPublic: &isPublic,
		Tags:     tags,
	})
	require.NoError(t, err)
	return dream
}
