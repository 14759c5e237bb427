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

type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/playlists
func CreatePlaylist(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidArgument(c)
		return
	}

	playlist := models.Playlist{Name: req.Name, UserID: caller.ID}
	if err := db.Create(&playlist).Error; err != nil {
		abortInternal(c)
		return
	}

	c.JSON(http.StatusCreated, playlist)
}

// PlaylistRow is one row of the caller's playlist listing. The thumbnail is
// borrowed from the most recently added member video.
type PlaylistRow struct {
	models.Playlist
	VideoCount   int64   `json:"video_count"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// GetPlaylists pages the caller's playlists, most recently updated first.
// GET /api/playlists?cursor=&limit=
func GetPlaylists(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := db.Model(&models.Playlist{}).
		Select(`playlists.*,
			(SELECT COUNT(*) FROM playlist_videos WHERE playlist_videos.playlist_id = playlists.id) AS video_count,
			(SELECT videos.thumbnail_url FROM playlist_videos
				JOIN videos ON videos.id = playlist_videos.video_id
				WHERE playlist_videos.playlist_id = playlists.id
				ORDER BY playlist_videos.created_at DESC, playlist_videos.video_id DESC
				LIMIT 1) AS thumbnail_url`).
		Where("playlists.user_id = ?", caller.ID)

	items, next, err := pagination.Paginate(q, playlistRecencySort, c.Query("cursor"), limit, func(r PlaylistRow) pagination.Cursor {
		return pagination.TimeCursor(r.UpdatedAt, r.ID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// PlaylistForVideoRow augments a playlist with whether a given video is
// already in it, for the save-to-playlist dialog.
type PlaylistForVideoRow struct {
	models.Playlist
	ContainsVideo bool `json:"contains_video"`
}

// GetPlaylistsForVideo pages the caller's playlists flagged with membership
// of one video.
// GET /api/playlists/for-video/:video_id?cursor=&limit=
func GetPlaylistsForVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	videoID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := db.Model(&models.Playlist{}).
		Select(`playlists.*,
			EXISTS(SELECT 1 FROM playlist_videos
				WHERE playlist_videos.playlist_id = playlists.id
				AND playlist_videos.video_id = ?) AS contains_video`, videoID).
		Where("playlists.user_id = ?", caller.ID)

	items, next, err := pagination.Paginate(q, playlistRecencySort, c.Query("cursor"), limit, func(r PlaylistForVideoRow) pagination.Cursor {
		return pagination.TimeCursor(r.UpdatedAt, r.ID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// callerPlaylist loads a playlist and walks the visibility ladder: an unknown
// id is not_found, someone else's playlist is forbidden.
func callerPlaylist(db *gorm.DB, playlistID, callerID uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := db.Take(&playlist, "id = ?", playlistID).Error; err != nil {
		return nil, err
	}
	if playlist.UserID != callerID {
		return nil, errForbidden
	}
	return &playlist, nil
}

var errForbidden = errors.New("forbidden")

// GetPlaylistVideos pages a playlist's member videos, most recently added
// first.
// GET /api/playlists/:id/videos?cursor=&limit=
func GetPlaylistVideos(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	playlistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	playlist, err := callerPlaylist(db, playlistID, caller.ID)
	if err != nil {
		abortPlaylistError(c, err)
		return
	}

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := videoListQuery(db).
		Select(videoListColumns + ", playlist_videos.created_at AS added_at").
		Joins("JOIN playlist_videos ON playlist_videos.video_id = videos.id").
		Where("playlist_videos.playlist_id = ?", playlist.ID)

	items, next, err := pagination.Paginate(q, playlistMemberSort, c.Query("cursor"), limit, func(r PlaylistVideoRow) pagination.Cursor {
		return pagination.TimeCursor(r.AddedAt, r.ID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// DeletePlaylist removes the caller's playlist and its memberships. Member
// videos themselves are untouched.
// DELETE /api/playlists/:id
func DeletePlaylist(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	playlistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", playlistID, caller.ID).Delete(&models.Playlist{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("playlist_id = ?", playlistID).Delete(&models.PlaylistVideo{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": playlistID})
}

// AddPlaylistVideo puts a video in the caller's playlist. The error ladder
// runs unknown playlist or video -> not_found, someone else's playlist ->
// forbidden, already a member -> conflict.
// POST /api/playlists/:id/videos/:video_id
func AddPlaylistVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	playlistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}
	videoID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	playlist, err := callerPlaylist(db, playlistID, caller.ID)
	if err != nil {
		abortPlaylistError(c, err)
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

	member := models.PlaylistVideo{PlaylistID: playlist.ID, VideoID: videoID}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
	if res.Error != nil {
		abortInternal(c)
		return
	}
	if res.RowsAffected == 0 {
		abortConflict(c)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// RemovePlaylistVideo drops a membership. Removing a video that is not in
// the playlist is not_found.
// DELETE /api/playlists/:id/videos/:video_id
func RemovePlaylistVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	playlistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}
	videoID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		abortInvalidArgument(c)
		return
	}

	playlist, err := callerPlaylist(db, playlistID, caller.ID)
	if err != nil {
		abortPlaylistError(c, err)
		return
	}

	res := db.Where("playlist_id = ? AND video_id = ?", playlist.ID, videoID).
		Delete(&models.PlaylistVideo{})
	if res.Error != nil {
		abortInternal(c)
		return
	}
	if res.RowsAffected == 0 {
		abortNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"playlist_id": playlist.ID, "video_id": videoID})
}

func abortPlaylistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		abortNotFound(c)
	case errors.Is(err, errForbidden):
		abortForbidden(c)
	default:
		abortInternal(c)
	}
}

// GetHistory pages the caller's watch history, most recently viewed first.
// GET /api/playlists/history?cursor=&limit=
func GetHistory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := videoListQuery(db).
		Select(videoListColumns + ", video_views.updated_at AS viewed_at").
		Joins("JOIN video_views ON video_views.video_id = videos.id").
		Where("video_views.user_id = ?", caller.ID)

	items, next, err := pagination.Paginate(q, historySort, c.Query("cursor"), limit, func(r HistoryVideoRow) pagination.Cursor {
		return pagination.TimeCursor(r.ViewedAt, r.ID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}

// GetLiked pages the videos the caller has liked, most recently liked first.
// GET /api/playlists/liked?cursor=&limit=
func GetLiked(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	caller := middleware.CallerFrom(c)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := videoListQuery(db).
		Select(videoListColumns + ", video_reactions.updated_at AS liked_at").
		Joins("JOIN video_reactions ON video_reactions.video_id = videos.id").
		Where("video_reactions.user_id = ? AND video_reactions.type = ?", caller.ID, models.ReactionLike)

	items, next, err := pagination.Paginate(q, likedSort, c.Query("cursor"), limit, func(r LikedVideoRow) pagination.Cursor {
		return pagination.TimeCursor(r.LikedAt, r.ID)
	})
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}
