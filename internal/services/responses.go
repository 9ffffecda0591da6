package services

import (
	"time"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/google/uuid"
)

// UserSummary is the public projection embedded in dreams, comments and
// follower lists. Never carries email or credential fields.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}

func summarize(u *models.User) UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

type EngagementCounts struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// DreamResponse collapses child collections into tag names and counts.
// Comments are only populated on single-dream reads.
type DreamResponse struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	IsPublic  bool               `json:"is_public"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	User      UserSummary        `json:"user"`
	Tags      []string           `json:"tags"`
	Counts    EngagementCounts   `json:"_count"`
	Comments  []*CommentResponse `json:"comments,omitempty"`
}

type CommentResponse struct {
	ID        uuid.UUID   `json:"id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

type Profile struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio"`
	AvatarURL      string    `json:"avatar_url"`
	CreatedAt      time.Time `json:"created_at"`
	DreamCount     int64     `json:"dream_count"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
