package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParentID must reference a top-level comment (parent_id IS NULL), so the
// thread never nests beyond depth 2. Enforced in the create handler.
type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"video_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CommentReaction struct {
	UserID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"user_id"`
	CommentID uuid.UUID    `gorm:"type:uuid;primaryKey;index" json:"comment_id"`
	Type      ReactionType `gorm:"type:varchar(10);not null" json:"type"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
