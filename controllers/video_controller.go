package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/middleware"
	"github.com/yooputer/eng-tube/models"
	"github.com/yooputer/eng-tube/pagination"
)

// GetVideos lists public videos newest first, optionally filtered by category
// or owner.
// GET /api/videos?category_id=&user_id=&cursor=&limit=
func GetVideos(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := publicVideos(videoListQuery(db))

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			abortInvalidArgument(c)
			return
		}
		q = q.Where("videos.category_id = ?", categoryID)
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			abortInvalidArgument(c)
			return
		}
		q = q.Where("videos.user_id = ?", userID)
	}

	items, next, err := pagination.Paginate(q, videoRecencySort, c.Query("cursor"), limit, videoRowCursor)
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// GetTrendingVideos lists public videos by view count. The aggregate is the
// primary sort column, so the keyset seek runs over the computed value.
// GET /api/videos/trending?cursor=&limit=
func GetTrendingVideos(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := publicVideos(videoListQuery(db))

	items, next, err := pagination.Paginate(q, videoTrendingSort, c.Query("cursor"), limit, func(r VideoRow) pagination.Cursor {
		return pagination.CountCursor(r.ViewCount, r.ID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// GetSubscribedVideos lists public videos from creators the caller follows.
// GET /api/videos/subscribed?cursor=&limit=
func GetSubscribedVideos(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := publicVideos(videoListQuery(db)).
		Joins("JOIN subscriptions ON subscriptions.creator_id = videos.user_id AND subscriptions.viewer_id = ?", caller.ID)

	items, next, err := pagination.Paginate(q, videoRecencySort, c.Query("cursor"), limit, videoRowCursor)
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// GetVideo returns a single video with aggregates and the caller's overlay.
// GET /api/videos/:id
func GetVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var row videoDetail
	err = videoDetailQuery(db, caller.ID).
		Where("videos.id = ?", videoID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, row)
}

// GetSuggestions lists public videos from the same category as the given
// video, excluding the video itself.
// GET /api/videos/:id/suggestions?cursor=&limit=
func GetSuggestions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	var video models.Video
	if err := db.Take(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	q := publicVideos(videoListQuery(db)).
		Where("videos.id <> ?", video.ID)
	if video.CategoryID != nil {
		q = q.Where("videos.category_id = ?", *video.CategoryID)
	}

	items, next, err := pagination.Paginate(q, videoRecencySort, c.Query("cursor"), limit, videoRowCursor)
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}
