package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalAuthID string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Name           string    `gorm:"size:150;not null" json:"name"`
	ImageURL       string    `gorm:"type:text" json:"image_url"`
	BannerURL      *string   `gorm:"type:text" json:"banner_url,omitempty"`
	BannerKey      *string   `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Videos    []Video    `gorm:"foreignKey:UserID" json:"-"`
	Playlists []Playlist `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
