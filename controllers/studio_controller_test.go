package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooputer/eng-tube/models"
)

func TestStudioListingIncludesPrivate(t *testing.T) {
	r, db := newServer(t)
	owner, token := seedUser(t, db, "owner")
	other, _ := seedUser(t, db, "other")

	seedVideo(t, db, owner, "my public", models.VisibilityPublic, minuteOffset(1))
	seedVideo(t, db, owner, "my draft", models.VisibilityPrivate, minuteOffset(2))
	seedVideo(t, db, other, "not mine", models.VisibilityPublic, minuteOffset(3))

	w := do(t, r, http.MethodGet, "/api/studio/videos?limit=10", token, nil)
	p := decodePage(t, w)
	assert.Equal(t, []string{"my draft", "my public"}, itemTitles(p))
}

func TestUpdateVideoOwnership(t *testing.T) {
	r, db := newServer(t)
	owner, ownerToken := seedUser(t, db, "owner")
	_, strangerToken := seedUser(t, db, "stranger")

	video := seedVideo(t, db, owner, "original title", models.VisibilityPrivate, minuteOffset(1))
	path := "/api/studio/videos/" + video.ID.String()
	edit := map[string]interface{}{
		"title":      "new title",
		"visibility": "public",
	}

	t.Run("stranger sees not found, not forbidden", func(t *testing.T) {
		w := do(t, r, http.MethodPut, path, strangerToken, edit)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", errorCode(t, w))

		var unchanged models.Video
		require.NoError(t, db.Take(&unchanged, "id = ?", video.ID).Error)
		assert.Equal(t, "original title", unchanged.Title)
	})

	t.Run("owner edits and the edit bumps recency", func(t *testing.T) {
		w := do(t, r, http.MethodPut, path, ownerToken, edit)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated models.Video
		require.NoError(t, db.Take(&updated, "id = ?", video.ID).Error)
		assert.Equal(t, "new title", updated.Title)
		assert.Equal(t, models.VisibilityPublic, updated.Visibility)
		assert.True(t, updated.UpdatedAt.After(video.UpdatedAt))
	})

	t.Run("bad visibility value is rejected", func(t *testing.T) {
		w := do(t, r, http.MethodPut, path, ownerToken, map[string]interface{}{
			"title":      "x",
			"visibility": "unlisted",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGenerateTitleGuards(t *testing.T) {
	r, db := newServer(t)
	owner, ownerToken := seedUser(t, db, "owner")
	_, strangerToken := seedUser(t, db, "stranger")

	video := seedVideo(t, db, owner, "draft", models.VisibilityPrivate, minuteOffset(1))
	titlePath := "/api/studio/videos/" + video.ID.String() + "/generate-title"

	t.Run("stranger sees not found", func(t *testing.T) {
		w := do(t, r, http.MethodPost, titlePath, strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no transcript yet is invalid argument", func(t *testing.T) {
		w := do(t, r, http.MethodPost, titlePath, ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_argument", errorCode(t, w))
	})

	t.Run("description endpoint guards identically", func(t *testing.T) {
		descPath := "/api/studio/videos/" + video.ID.String() + "/generate-description"

		w := do(t, r, http.MethodPost, descPath, strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = do(t, r, http.MethodPost, descPath, ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires auth", func(t *testing.T) {
		w := do(t, r, http.MethodPost, titlePath, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDeleteVideoCascades(t *testing.T) {
	r, db := newServer(t)
	owner, ownerToken := seedUser(t, db, "owner")
	viewer, _ := seedUser(t, db, "viewer")
	_, strangerToken := seedUser(t, db, "stranger")

	video := seedVideo(t, db, owner, "doomed", models.VisibilityPublic, minuteOffset(1))

	comment := models.Comment{VideoID: video.ID, UserID: viewer.ID, Content: "bye"}
	require.NoError(t, db.Create(&comment).Error)
	require.NoError(t, db.Create(&models.CommentReaction{UserID: viewer.ID, CommentID: comment.ID, Type: models.ReactionLike}).Error)
	require.NoError(t, db.Create(&models.VideoReaction{UserID: viewer.ID, VideoID: video.ID, Type: models.ReactionLike}).Error)
	require.NoError(t, db.Create(&models.VideoView{UserID: viewer.ID, VideoID: video.ID}).Error)

	playlist := models.Playlist{Name: "mix", UserID: viewer.ID}
	require.NoError(t, db.Create(&playlist).Error)
	require.NoError(t, db.Create(&models.PlaylistVideo{PlaylistID: playlist.ID, VideoID: video.ID}).Error)

	path := "/api/studio/videos/" + video.ID.String()

	t.Run("stranger cannot delete", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, path, strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("owner delete removes every dependent row", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, path, ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		for name, count := range map[string]func() int64{
			"videos": func() int64 {
				var n int64
				db.Model(&models.Video{}).Where("id = ?", video.ID).Count(&n)
				return n
			},
			"comments": func() int64 {
				var n int64
				db.Model(&models.Comment{}).Where("video_id = ?", video.ID).Count(&n)
				return n
			},
			"comment reactions": func() int64 {
				var n int64
				db.Model(&models.CommentReaction{}).Where("comment_id = ?", comment.ID).Count(&n)
				return n
			},
			"video reactions": func() int64 {
				var n int64
				db.Model(&models.VideoReaction{}).Where("video_id = ?", video.ID).Count(&n)
				return n
			},
			"views": func() int64 {
				var n int64
				db.Model(&models.VideoView{}).Where("video_id = ?", video.ID).Count(&n)
				return n
			},
			"playlist memberships": func() int64 {
				var n int64
				db.Model(&models.PlaylistVideo{}).Where("video_id = ?", video.ID).Count(&n)
				return n
			},
		} {
			assert.Equal(t, int64(0), count(), fmt.Sprintf("%s should be gone", name))
		}

		// The playlist survives, only the membership went.
		var survivor models.Playlist
		assert.NoError(t, db.Take(&survivor, "id = ?", playlist.ID).Error)
	})
}
