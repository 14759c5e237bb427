package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yooputer/eng-tube/middleware"
	"github.com/yooputer/eng-tube/models"
	"github.com/yooputer/eng-tube/pagination"
)

// Subscribe follows a creator. Self-subscription is rejected before touching
// storage; a duplicate subscribe is a silent no-op behind the unique key.
// POST /api/subscriptions/:user_id
func Subscribe(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	creatorID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}
	if creatorID == caller.ID {
		abortInvalidArgument(c)
		return
	}

	if err := db.Take(&models.User{}, "id = ?", creatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	sub := models.Subscription{ViewerID: caller.ID, CreatorID: creatorID}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub)
	if res.Error != nil {
		abortInternal(c)
		return
	}
	if res.RowsAffected == 0 {
		// Already subscribed: acknowledge with the existing row.
		if err := db.Take(&sub, "viewer_id = ? AND creator_id = ?", caller.ID, creatorID).Error; err != nil {
			abortInternal(c)
			return
		}
		c.JSON(http.StatusOK, sub)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// Unsubscribe stops following. Removing an absent subscription is not_found.
// DELETE /api/subscriptions/:user_id
func Unsubscribe(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	creatorID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}
	if creatorID == caller.ID {
		abortInvalidArgument(c)
		return
	}

	res := db.Where("viewer_id = ? AND creator_id = ?", caller.ID, creatorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		abortInternal(c)
		return
	}
	if res.RowsAffected == 0 {
		abortNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"creator_id": creatorID})
}

// SubscriptionRow is one row of the caller's subscription list.
type SubscriptionRow struct {
	models.Subscription
	CreatorName     string `json:"creator_name"`
	CreatorImageURL string `json:"creator_image_url"`
	SubscriberCount int64  `json:"subscriber_count"`
}

// GetSubscriptions pages the caller's subscriptions, most recent first, with
// each creator's subscriber count.
// GET /api/subscriptions?cursor=&limit=
func GetSubscriptions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := db.Model(&models.Subscription{}).
		Select(`subscriptions.*,
			users.name AS creator_name,
			users.image_url AS creator_image_url,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.creator_id = users.id) AS subscriber_count`).
		Joins("JOIN users ON users.id = subscriptions.creator_id").
		Where("subscriptions.viewer_id = ?", caller.ID)

	items, next, err := pagination.Paginate(q, subscriptionRecencySort, c.Query("cursor"), limit, func(r SubscriptionRow) pagination.Cursor {
		return pagination.TimeCursor(r.UpdatedAt, r.CreatorID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}
