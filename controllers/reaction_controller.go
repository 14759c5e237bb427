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

// The toggle protocol, shared by video and comment reactions: repeating the
// current reaction removes it, anything else upserts in place. Each branch is
// a single atomic statement, so a double-submitted toggle converges instead
// of duplicating rows.
//
//	like   when like    -> none   (delete)
//	like   when dislike -> like   (upsert)
//	like   when none    -> like   (insert)

func toggleVideoReaction(db *gorm.DB, userID, videoID uuid.UUID, rt models.ReactionType) (string, error) {
	res := db.Where("user_id = ? AND video_id = ? AND type = ?", userID, videoID, rt).
		Delete(&models.VideoReaction{})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return "none", nil
	}

	reaction := models.VideoReaction{UserID: userID, VideoID: videoID, Type: rt}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"type":       rt,
			"updated_at": time.Now(),
		}),
	}).Create(&reaction).Error
	if err != nil {
		return "", err
	}
	return string(rt), nil
}

func toggleCommentReaction(db *gorm.DB, userID, commentID uuid.UUID, rt models.ReactionType) (string, error) {
	res := db.Where("user_id = ? AND comment_id = ? AND type = ?", userID, commentID, rt).
		Delete(&models.CommentReaction{})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return "none", nil
	}

	reaction := models.CommentReaction{UserID: userID, CommentID: commentID, Type: rt}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "comment_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"type":       rt,
			"updated_at": time.Now(),
		}),
	}).Create(&reaction).Error
	if err != nil {
		return "", err
	}
	return string(rt), nil
}

func videoReactionHandler(rt models.ReactionType) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		state, err := toggleVideoReaction(db, caller.ID, videoID, rt)
		if err != nil {
			abortInternal(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reaction": state})
	}
}

func commentReactionHandler(rt models.ReactionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)
		caller := middleware.CallerFrom(c)

		commentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			abortInvalidArgument(c)
			return
		}

		if err := db.Take(&models.Comment{}, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortNotFound(c)
				return
			}
			abortInternal(c)
			return
		}

		state, err := toggleCommentReaction(db, caller.ID, commentID, rt)
		if err != nil {
			abortInternal(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reaction": state})
	}
}

// POST /api/videos/:id/like
func LikeVideo(c *gin.Context) { videoReactionHandler(models.ReactionLike)(c) }

// POST /api/videos/:id/dislike
func DislikeVideo(c *gin.Context) { videoReactionHandler(models.ReactionDislike)(c) }

// POST /api/comments/:id/like
func LikeComment(c *gin.Context) { commentReactionHandler(models.ReactionLike)(c) }

// POST /api/comments/:id/dislike
func DislikeComment(c *gin.Context) { commentReactionHandler(models.ReactionDislike)(c) }
