package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoVisibility string

const (
	VisibilityPublic  VideoVisibility = "public"
	VisibilityPrivate VideoVisibility = "private"
)

// Media* fields are owned by the external transcoding service and are only
// written through the webhook path or studio revalidate, never by owner edits.
type Video struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Visibility  VideoVisibility `gorm:"type:varchar(10);not null;default:'private'" json:"visibility"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`

	MediaUploadID    *string `gorm:"size:255;index" json:"-"`
	MediaAssetID     *string `gorm:"size:255" json:"-"`
	MediaStatus      *string `gorm:"size:50" json:"media_status,omitempty"`
	MediaPlaybackID  *string `gorm:"size:255" json:"media_playback_id,omitempty"`
	MediaTrackID     *string `gorm:"size:255" json:"-"`
	MediaTrackStatus *string `gorm:"size:50" json:"-"`
	ThumbnailURL     *string `gorm:"type:text" json:"thumbnail_url,omitempty"`
	ThumbnailKey     *string `gorm:"type:text" json:"-"`
	PreviewURL       *string `gorm:"type:text" json:"preview_url,omitempty"`
	DurationMS       int     `gorm:"default:0" json:"duration_ms"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_videos_recency,priority:1,sort:desc" json:"updated_at"`

	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type VideoView struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	VideoID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"video_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

type VideoReaction struct {
	UserID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"user_id"`
	VideoID   uuid.UUID    `gorm:"type:uuid;primaryKey;index" json:"video_id"`
	Type      ReactionType `gorm:"type:varchar(10);not null" json:"type"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
