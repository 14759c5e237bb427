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
	"github.com/yooputer/eng-tube/pagination"
	"github.com/yooputer/eng-tube/services"
	"github.com/yooputer/eng-tube/utils"
)

// CreateVideo asks the media service for a direct upload and records the
// video in waiting state. The browser uploads straight to the returned URL;
// everything after that arrives through the webhook.
// POST /api/studio/videos
func CreateVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	upload, err := services.CreateDirectUpload(caller.ID.String())
	if err != nil {
		config.Log.Error("media direct upload failed", zap.Error(err))
		abortInternal(c)
		return
	}

	status := "waiting"
	video := models.Video{
		UserID:        caller.ID,
		Title:         "Untitled",
		MediaStatus:   &status,
		MediaUploadID: &upload.ID,
	}
	if err := db.Create(&video).Error; err != nil {
		abortInternal(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"video":      video,
		"upload_url": upload.URL,
	})
}

// GetStudioVideos lists the caller's own videos, all visibilities, newest
// first.
// GET /api/studio/videos?cursor=&limit=
func GetStudioVideos(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := videoListQuery(db).Where("videos.user_id = ?", caller.ID)

	items, next, err := pagination.Paginate(q, videoRecencySort, c.Query("cursor"), limit, videoRowCursor)
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// GET /api/studio/videos/:id
func GetStudioVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var video models.Video
	err = db.Take(&video, "id = ? AND user_id = ?", videoID, caller.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, video)
}

type UpdateVideoRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	CategoryID  *uuid.UUID             `json:"category_id"`
	Visibility  models.VideoVisibility `json:"visibility" binding:"required"`
}

// UpdateVideo edits owner-mutable fields. A non-owner sees not_found, never
// forbidden, so foreign video ids stay unprobeable.
// PUT /api/studio/videos/:id
func UpdateVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidArgument(c)
		return
	}
	if req.Visibility != models.VisibilityPublic && req.Visibility != models.VisibilityPrivate {
		abortInvalidArgument(c)
		return
	}

	res := db.Model(&models.Video{}).
		Where("id = ? AND user_id = ?", videoID, caller.ID).
		Updates(map[string]interface{}{
			"title":       req.Title,
			"description": req.Description,
			"category_id": req.CategoryID,
			"visibility":  req.Visibility,
		})
	if res.Error != nil {
		abortInternal(c)
		return
	}
	if res.RowsAffected == 0 {
		abortNotFound(c)
		return
	}

	var video models.Video
	if err := db.Take(&video, "id = ?", videoID).Error; err != nil {
		abortInternal(c)
		return
	}
	c.JSON(http.StatusOK, video)
}

const titlePrompt = `You write titles for videos from their transcript.
Return a single concise, searchable title under 100 characters that names the
main topic. Return only the title, no quotes, no markup.`

const descriptionPrompt = `You summarise videos from their transcript.
Return a short description: a brief overview, the key points in order, and any
notable quotes, between 3 and 5 sentences. Return only the description.`

// generateVideoText loads the caller's video, renders its subtitle track as
// text and runs it through the generative model. The transcript only exists
// once the track webhook fired, so a video without playback and track ids is
// invalid_argument.
func generateVideoText(c *gin.Context, prompt string) (string, bool) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return "", false
	}

	var video models.Video
	if err := db.Take(&video, "id = ? AND user_id = ?", videoID, caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return "", false
		}
		abortInternal(c)
		return "", false
	}
	if video.MediaPlaybackID == nil || video.MediaTrackID == nil {
		abortInvalidArgument(c)
		return "", false
	}

	transcript, err := services.ReadTranscript(*video.MediaPlaybackID, *video.MediaTrackID)
	if err != nil {
		config.Log.Error("transcript fetch failed", zap.String("video_id", videoID.String()), zap.Error(err))
		abortInternal(c)
		return "", false
	}

	text, err := services.GenerateText(c.Request.Context(), prompt, transcript)
	if err != nil {
		config.Log.Error("text generation failed", zap.String("video_id", videoID.String()), zap.Error(err))
		abortInternal(c)
		return "", false
	}
	return text, true
}

// GenerateTitle drafts a title from the video's transcript and applies it as
// an owner edit.
// POST /api/studio/videos/:id/generate-title
func GenerateTitle(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	title, ok := generateVideoText(c, titlePrompt)
	if !ok {
		return
	}

	if err := db.Model(&models.Video{}).
		Where("id = ? AND user_id = ?", c.Param("id"), caller.ID).
		Update("title", title).Error; err != nil {
		abortInternal(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}

// GenerateDescription drafts a description from the video's transcript and
// applies it as an owner edit.
// POST /api/studio/videos/:id/generate-description
func GenerateDescription(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	description, ok := generateVideoText(c, descriptionPrompt)
	if !ok {
		return
	}

	if err := db.Model(&models.Video{}).
		Where("id = ? AND user_id = ?", c.Param("id"), caller.ID).
		Update("description", description).Error; err != nil {
		abortInternal(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}

// DeleteVideo removes a video and everything hanging off it in one
// transaction: reactions, views, comments (and their reactions), playlist
// memberships.
// DELETE /api/studio/videos/:id
func DeleteVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", videoID, caller.ID).Delete(&models.Video{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("video_id = ?", videoID),
		).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}
		for _, child := range []interface{}{
			&models.Comment{},
			&models.VideoReaction{},
			&models.VideoView{},
			&models.PlaylistVideo{},
		} {
			if err := tx.Where("video_id = ?", videoID).Delete(child).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": videoID})
}

// UploadThumbnail replaces the video thumbnail with a caller-provided image
// stored in the blob service. The previous custom blob is deleted by key.
// POST /api/studio/videos/:id/thumbnail
func UploadThumbnail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var video models.Video
	if err := db.Take(&video, "id = ? AND user_id = ?", videoID, caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	url, key, err := utils.UploadImageToSupabase(fileHeader, "thumbnails", video.ID.String())
	if err != nil {
		config.Log.Error("thumbnail upload failed", zap.Error(err))
		abortInternal(c)
		return
	}

	if video.ThumbnailKey != nil {
		if err := utils.DeleteImageFromSupabase(*video.ThumbnailKey); err != nil {
			config.Log.Warn("stale thumbnail not deleted", zap.String("key", *video.ThumbnailKey), zap.Error(err))
		}
	}

	if err := db.Model(&video).Updates(map[string]interface{}{
		"thumbnail_url": url,
		"thumbnail_key": key,
	}).Error; err != nil {
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"thumbnail_url": url})
}

// RestoreThumbnail drops the custom thumbnail and falls back to the media
// service still derived from the playback id.
// POST /api/studio/videos/:id/thumbnail/restore
func RestoreThumbnail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var video models.Video
	if err := db.Take(&video, "id = ? AND user_id = ?", videoID, caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	if video.MediaPlaybackID == nil {
		abortInvalidArgument(c)
		return
	}

	if video.ThumbnailKey != nil {
		if err := utils.DeleteImageFromSupabase(*video.ThumbnailKey); err != nil {
			config.Log.Warn("custom thumbnail not deleted", zap.String("key", *video.ThumbnailKey), zap.Error(err))
		}
	}

	url := services.ThumbnailURL(*video.MediaPlaybackID)
	if err := db.Model(&video).Updates(map[string]interface{}{
		"thumbnail_url": url,
		"thumbnail_key": nil,
	}).Error; err != nil {
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"thumbnail_url": url})
}

// RevalidateVideo re-pulls asset state from the media service, for videos
// whose webhook events were missed.
// POST /api/studio/videos/:id/revalidate
func RevalidateVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	var video models.Video
	if err := db.Take(&video, "id = ? AND user_id = ?", videoID, caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}
	if video.MediaUploadID == nil {
		abortInvalidArgument(c)
		return
	}

	asset, err := services.GetUploadAsset(*video.MediaUploadID)
	if err != nil {
		config.Log.Error("media asset fetch failed", zap.Error(err))
		abortInternal(c)
		return
	}
	if asset == nil {
		abortInvalidArgument(c)
		return
	}

	updates := map[string]interface{}{
		"media_asset_id": asset.ID,
		"media_status":   asset.Status,
		"duration_ms":    int(asset.DurationSec * 1000),
	}
	if asset.PlaybackID != "" {
		updates["media_playback_id"] = asset.PlaybackID
	}
	if err := db.Model(&video).Updates(updates).Error; err != nil {
		abortInternal(c)
		return
	}

	if err := db.Take(&video, "id = ?", videoID).Error; err != nil {
		abortInternal(c)
		return
	}
	c.JSON(http.StatusOK, video)
}
