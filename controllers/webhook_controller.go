package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/config"
	"github.com/yooputer/eng-tube/models"
	"github.com/yooputer/eng-tube/services"
)

type mediaWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID          string  `json:"id"`
		UploadID    string  `json:"upload_id"`
		AssetID     string  `json:"asset_id"`
		Status      string  `json:"status"`
		PlaybackID  string  `json:"playback_id"`
		DurationSec float64 `json:"duration"`
	} `json:"data"`
}

func verifyWebhookSignature(body []byte, signature string) bool {
	secret := os.Getenv("MEDIA_WEBHOOK_SECRET")
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// MediaWebhook is the narrow out-of-band write path for media asset state.
// Events are keyed by the upload id (asset id for track events) and only
// touch Media* fields, so the ownership rules on owner edits stay intact.
// The video row may legitimately be gone (owner deleted it mid-transcode);
// that is acknowledged, not retried.
// POST /api/videos/webhook
func MediaWebhook(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abortInvalidArgument(c)
		return
	}
	if !verifyWebhookSignature(body, c.GetHeader("media-signature")) {
		abortUnauthenticated(c)
		return
	}

	var event mediaWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		abortInvalidArgument(c)
		return
	}

	config.Log.Info("media webhook",
		zap.String("type", event.Type),
		zap.String("upload_id", event.Data.UploadID))

	switch event.Type {
	case "video.asset.created":
		if event.Data.UploadID == "" {
			abortInvalidArgument(c)
			return
		}
		err = db.Model(&models.Video{}).
			Where("media_upload_id = ?", event.Data.UploadID).
			UpdateColumns(map[string]interface{}{
				"media_asset_id": event.Data.ID,
				"media_status":   event.Data.Status,
			}).Error

	case "video.asset.ready":
		if event.Data.UploadID == "" || event.Data.PlaybackID == "" {
			abortInvalidArgument(c)
			return
		}
		updates := map[string]interface{}{
			"media_asset_id":    event.Data.ID,
			"media_status":      event.Data.Status,
			"media_playback_id": event.Data.PlaybackID,
			"preview_url":       services.PreviewURL(event.Data.PlaybackID),
			"duration_ms":       int(event.Data.DurationSec * 1000),
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			var video models.Video
			if err := tx.Take(&video, "media_upload_id = ?", event.Data.UploadID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			// Custom thumbnails survive the asset becoming ready.
			if video.ThumbnailKey == nil {
				updates["thumbnail_url"] = services.ThumbnailURL(event.Data.PlaybackID)
			}
			return tx.Model(&video).UpdateColumns(updates).Error
		})

	case "video.asset.errored":
		if event.Data.UploadID == "" {
			abortInvalidArgument(c)
			return
		}
		err = db.Model(&models.Video{}).
			Where("media_upload_id = ?", event.Data.UploadID).
			UpdateColumn("media_status", event.Data.Status).Error

	case "video.asset.deleted":
		if event.Data.UploadID == "" {
			abortInvalidArgument(c)
			return
		}
		err = db.Where("media_upload_id = ?", event.Data.UploadID).
			Delete(&models.Video{}).Error

	case "video.asset.track.ready":
		if event.Data.AssetID == "" {
			abortInvalidArgument(c)
			return
		}
		err = db.Model(&models.Video{}).
			Where("media_asset_id = ?", event.Data.AssetID).
			UpdateColumns(map[string]interface{}{
				"media_track_id":     event.Data.ID,
				"media_track_status": event.Data.Status,
			}).Error

	default:
		// Unknown events are acknowledged so the service stops redelivering.
	}

	if err != nil {
		config.Log.Error("media webhook apply failed", zap.String("type", event.Type), zap.Error(err))
		abortInternal(c)
		return
	}

	c.Status(http.StatusOK)
}
