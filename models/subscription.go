package models

import (
	"time"

	"github.com/google/uuid"
)

// Self-subscription (viewer_id == creator_id) is rejected before storage.
type Subscription struct {
	ViewerID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"viewer_id"`
	CreatorID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"creator_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
