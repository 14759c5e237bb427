package controllers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooputer/eng-tube/models"
)

func TestCreateComment(t *testing.T) {
	r, db := newServer(t)
	owner, _ := seedUser(t, db, "creator")
	_, token := seedUser(t, db, "commenter")

	video := seedVideo(t, db, owner, "the video", models.VisibilityPublic, minuteOffset(1))

	t.Run("top-level comment", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/comments", token, map[string]interface{}{
			"video_id": video.ID,
			"content":  "nice one",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("reply to a top-level comment", func(t *testing.T) {
		var parent models.Comment
		require.NoError(t, db.Take(&parent, "video_id = ? AND parent_id IS NULL", video.ID).Error)

		w := do(t, r, http.MethodPost, "/api/comments", token, map[string]interface{}{
			"video_id":  video.ID,
			"parent_id": parent.ID,
			"content":   "agreed",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("reply to a reply is rejected", func(t *testing.T) {
		var reply models.Comment
		require.NoError(t, db.Take(&reply, "video_id = ? AND parent_id IS NOT NULL", video.ID).Error)

		w := do(t, r, http.MethodPost, "/api/comments", token, map[string]interface{}{
			"video_id":  video.ID,
			"parent_id": reply.ID,
			"content":   "too deep",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_argument", errorCode(t, w))
	})

	t.Run("unknown parent is not found", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/comments", token, map[string]interface{}{
			"video_id":  video.ID,
			"parent_id": uuid.New(),
			"content":   "orphan",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown video is not found", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/comments", token, map[string]interface{}{
			"video_id": uuid.New(),
			"content":  "nowhere",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("requires auth", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/comments", "", map[string]interface{}{
			"video_id": video.ID,
			"content":  "anonymous",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetComments(t *testing.T) {
	r, db := newServer(t)
	owner, _ := seedUser(t, db, "creator")
	author, _ := seedUser(t, db, "author")

	video := seedVideo(t, db, owner, "the video", models.VisibilityPublic, minuteOffset(1))

	first := models.Comment{VideoID: video.ID, UserID: author.ID, Content: "first", UpdatedAt: minuteOffset(1)}
	require.NoError(t, db.Create(&first).Error)
	second := models.Comment{VideoID: video.ID, UserID: author.ID, Content: "second", UpdatedAt: minuteOffset(2)}
	require.NoError(t, db.Create(&second).Error)
	reply := models.Comment{VideoID: video.ID, UserID: author.ID, ParentID: &first.ID, Content: "a reply", UpdatedAt: minuteOffset(3)}
	require.NoError(t, db.Create(&reply).Error)

	t.Run("top-level thread with totals", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/videos/"+video.ID.String()+"/comments?limit=10", "", nil)
		p := decodePage(t, w)

		require.Len(t, p.Items, 2)
		assert.Equal(t, "second", p.Items[0]["content"])
		assert.Equal(t, "first", p.Items[1]["content"])
		assert.Equal(t, float64(1), p.Items[1]["reply_count"])
		assert.Equal(t, "author", p.Items[0]["user_name"])

		// Replies count toward the video total even though they are not
		// in this page.
		require.NotNil(t, p.TotalCount)
		assert.Equal(t, int64(3), *p.TotalCount)
	})

	t.Run("replies of one comment", func(t *testing.T) {
		w := do(t, r, http.MethodGet,
			"/api/videos/"+video.ID.String()+"/comments?limit=10&parent_id="+first.ID.String(), "", nil)
		p := decodePage(t, w)
		require.Len(t, p.Items, 1)
		assert.Equal(t, "a reply", p.Items[0]["content"])
	})
}

func TestDeleteComment(t *testing.T) {
	r, db := newServer(t)
	owner, _ := seedUser(t, db, "creator")
	author, authorToken := seedUser(t, db, "author")
	_, strangerToken := seedUser(t, db, "stranger")

	video := seedVideo(t, db, owner, "the video", models.VisibilityPublic, minuteOffset(1))
	comment := models.Comment{VideoID: video.ID, UserID: author.ID, Content: "mine"}
	require.NoError(t, db.Create(&comment).Error)
	reply := models.Comment{VideoID: video.ID, UserID: owner.ID, ParentID: &comment.ID, Content: "reply"}
	require.NoError(t, db.Create(&reply).Error)

	path := "/api/comments/" + comment.ID.String()

	t.Run("stranger sees not found", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, path, strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("author deletes comment and replies", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, path, authorToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var n int64
		require.NoError(t, db.Model(&models.Comment{}).Where("video_id = ?", video.ID).Count(&n).Error)
		assert.Equal(t, int64(0), n)
	})
}
