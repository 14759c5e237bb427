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

type CreateCommentRequest struct {
	VideoID  uuid.UUID  `json:"video_id" binding:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
	Content  string     `json:"content" binding:"required"`
}

// CreateComment posts a comment or a reply. Replies only attach to top-level
// comments: a missing parent is not_found, a reply-to-a-reply is
// invalid_argument.
// POST /api/comments
func CreateComment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidArgument(c)
		return
	}

	var video models.Video
	if err := db.Take(&video, "id = ?", req.VideoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := db.Take(&parent, "id = ?", *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortNotFound(c)
				return
			}
			abortInternal(c)
			return
		}
		if parent.ParentID != nil {
			abortInvalidArgument(c)
			return
		}
		if parent.VideoID != req.VideoID {
			abortInvalidArgument(c)
			return
		}
	}

	comment := models.Comment{
		VideoID:  req.VideoID,
		UserID:   caller.ID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := db.Create(&comment).Error; err != nil {
		abortInternal(c)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// CommentRow is one row of a comment listing: the comment, its author, reply
// and reaction counts, and the caller's own reaction.
type CommentRow struct {
	models.Comment
	UserName       string               `json:"user_name"`
	UserImageURL   string               `json:"user_image_url"`
	ReplyCount     int64                `json:"reply_count"`
	LikeCount      int64                `json:"like_count"`
	DislikeCount   int64                `json:"dislike_count"`
	ViewerReaction *models.ReactionType `json:"viewer_reaction,omitempty"`
}

// GetComments pages a video's comments newest first. Without parent_id it
// returns the top-level thread; with parent_id it returns that comment's
// replies. total_count counts every comment on the video, replies included.
// GET /api/videos/:id/comments?parent_id=&cursor=&limit=
func GetComments(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

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

	q := db.Model(&models.Comment{}).
		Select(`comments.*,
			users.name AS user_name,
			users.image_url AS user_image_url,
			(SELECT COUNT(*) FROM comments replies WHERE replies.parent_id = comments.id) AS reply_count,
			(SELECT COUNT(*) FROM comment_reactions WHERE comment_reactions.comment_id = comments.id AND comment_reactions.type = 'like') AS like_count,
			(SELECT COUNT(*) FROM comment_reactions WHERE comment_reactions.comment_id = comments.id AND comment_reactions.type = 'dislike') AS dislike_count,
			(SELECT type FROM comment_reactions WHERE comment_reactions.comment_id = comments.id AND comment_reactions.user_id = ?) AS viewer_reaction`,
			caller.ID).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.video_id = ?", videoID)

	if raw := c.Query("parent_id"); raw != "" {
		parentID, err := uuid.Parse(raw)
		if err != nil {
			abortInvalidArgument(c)
			return
		}
		q = q.Where("comments.parent_id = ?", parentID)
	} else {
		q = q.Where("comments.parent_id IS NULL")
	}

	var totalCount int64
	if err := db.Model(&models.Comment{}).Where("video_id = ?", videoID).Count(&totalCount).Error; err != nil {
		abortInternal(c)
		return
	}

	items, next, err := pagination.Paginate(q, commentRecencySort, c.Query("cursor"), limit, func(r CommentRow) pagination.Cursor {
		return pagination.TimeCursor(r.UpdatedAt, r.ID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	resp := pageResponse(items, next)
	resp["total_count"] = totalCount
	c.JSON(http.StatusOK, resp)
}

// DeleteComment removes the caller's own comment and its replies. Someone
// else's comment is not_found to the caller.
// DELETE /api/comments/:id
func DeleteComment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", commentID, caller.ID).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("parent_id = ?", commentID),
		).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}
		return tx.Where("parent_id = ?", commentID).Delete(&models.Comment{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": commentID})
}
