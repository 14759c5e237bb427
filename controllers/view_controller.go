package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yooputer/eng-tube/middleware"
	"github.com/yooputer/eng-tube/models"
)

// CreateVideoView records a play. One row per (user, video): the first play
// inserts it, every later play only touches updated_at, which is what the
// watch history orders by.
// POST /api/videos/:id/views
func CreateVideoView(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	if err := db.Take(&models.Video{}, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	view := models.VideoView{UserID: caller.ID, VideoID: videoID}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"updated_at": time.Now(),
		}),
	}).Create(&view).Error
	if err != nil {
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, view)
}
