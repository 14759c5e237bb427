package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/config"
	"github.com/yooputer/eng-tube/middleware"
	"github.com/yooputer/eng-tube/models"
	"github.com/yooputer/eng-tube/utils"
)

// userProfile is the channel page shape.
type userProfile struct {
	models.User
	VideoCount       int64 `json:"video_count"`
	SubscriberCount  int64 `json:"subscriber_count"`
	ViewerSubscribed bool  `json:"viewer_subscribed"`
}

// GetUser returns a channel profile with its public counts and whether the
// caller follows it.
// GET /api/users/:id
func GetUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var profile userProfile
	err = db.Model(&models.User{}).
		Select(`users.*,
			(SELECT COUNT(*) FROM videos WHERE videos.user_id = users.id) AS video_count,
			(SELECT COUNT(*) FROM subscriptions WHERE subscriptions.creator_id = users.id) AS subscriber_count,
			EXISTS(SELECT 1 FROM subscriptions WHERE subscriptions.creator_id = users.id AND subscriptions.viewer_id = ?) AS viewer_subscribed`,
			caller.ID).
		Where("users.id = ?", userID).
		Take(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, profile)
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateProfile renames the caller's own channel.
// PUT /api/users/me
func UpdateProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidArgument(c)
		return
	}

	if err := db.Model(&models.User{}).Where("id = ?", caller.ID).
		Update("name", req.Name).Error; err != nil {
		abortInternal(c)
		return
	}

	var user models.User
	if err := db.Take(&user, "id = ?", caller.ID).Error; err != nil {
		abortInternal(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadBanner replaces the caller's channel banner. The stale object is
// deleted from storage after the row points at the new one.
// POST /api/users/me/banner
func UploadBanner(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	file, err := c.FormFile("banner")
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var user models.User
	if err := db.Take(&user, "id = ?", caller.ID).Error; err != nil {
		abortInternal(c)
		return
	}

	url, key, err := utils.UploadImageToSupabase(file, "banners", caller.ID.String())
	if err != nil {
		config.Log.Error("banner upload failed", zap.Error(err))
		abortInternal(c)
		return
	}

	staleKey := user.BannerKey
	err = db.Model(&user).Updates(map[string]interface{}{
		"banner_url": url,
		"banner_key": key,
	}).Error
	if err != nil {
		abortInternal(c)
		return
	}

	if staleKey != nil {
		if err := utils.DeleteImageFromSupabase(*staleKey); err != nil {
			config.Log.Warn("stale banner cleanup failed", zap.String("key", *staleKey), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, user)
}

// RemoveBanner clears the caller's channel banner.
// DELETE /api/users/me/banner
func RemoveBanner(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	var user models.User
	if err := db.Take(&user, "id = ?", caller.ID).Error; err != nil {
		abortInternal(c)
		return
	}

	staleKey := user.BannerKey
	err := db.Model(&user).Updates(map[string]interface{}{
		"banner_url": nil,
		"banner_key": nil,
	}).Error
	if err != nil {
		abortInternal(c)
		return
	}

	if staleKey != nil {
		if err := utils.DeleteImageFromSupabase(*staleKey); err != nil {
			config.Log.Warn("stale banner cleanup failed", zap.String("key", *staleKey), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, user)
}
