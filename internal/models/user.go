package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Username    string    `json:"username" gorm:"uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Follow struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	FollowerID  uuid.UUID `json:"follower_id" gorm:"type:uuid;not null;uniqueIndex:idx_follower_following"`
	FollowingID uuid.UUID `json:"following_id" gorm:"type:uuid;not null;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `json:"follower" gorm:"foreignKey:FollowerID"`
	Following User `json:"following" gorm:"foreignKey:FollowingID"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}
