package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooputer/eng-tube/models"
	"github.com/yooputer/eng-tube/utils"
)

func TestGetUserProfile(t *testing.T) {
	r, db := newServer(t)
	creator, _ := seedUser(t, db, "creator")
	viewer, viewerToken := seedUser(t, db, "viewer")

	seedVideo(t, db, creator, "one", models.VisibilityPublic, minuteOffset(1))
	seedVideo(t, db, creator, "two", models.VisibilityPrivate, minuteOffset(2))
	require.NoError(t, db.Create(&models.Subscription{ViewerID: viewer.ID, CreatorID: creator.ID}).Error)

	t.Run("profile carries counts", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/users/"+creator.ID.String(), viewerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "creator", body["name"])
		assert.Equal(t, float64(2), body["video_count"])
		assert.Equal(t, float64(1), body["subscriber_count"])
		assert.Equal(t, true, body["viewer_subscribed"])
	})

	t.Run("anonymous is never subscribed", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/users/"+creator.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["viewer_subscribed"])
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/users/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	r, db := newServer(t)
	user, token := seedUser(t, db, "old name")

	w := do(t, r, http.MethodPut, "/api/users/me", token, map[string]interface{}{"name": "new name"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.User
	require.NoError(t, db.Take(&updated, "id = ?", user.ID).Error)
	assert.Equal(t, "new name", updated.Name)
}

func TestUserMaterializedOnFirstAuthedRequest(t *testing.T) {
	r, db := newServer(t)

	token, err := utils.SignToken("ext-fresh", "Fresh User", "https://img.test/fresh", time.Hour)
	require.NoError(t, err)

	w := do(t, r, http.MethodPut, "/api/users/me", token, map[string]interface{}{"name": "Fresh User"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.Take(&user, "external_auth_id = ?", "ext-fresh").Error)
	assert.Equal(t, "Fresh User", user.Name)

	// A second request resolves to the same row, not a duplicate.
	w = do(t, r, http.MethodPut, "/api/users/me", token, map[string]interface{}{"name": "Fresh User"})
	require.Equal(t, http.StatusOK, w.Code)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("external_auth_id = ?", "ext-fresh").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGetCategories(t *testing.T) {
	r, db := newServer(t)

	require.NoError(t, db.Create(&models.Category{Name: "Music"}).Error)
	require.NoError(t, db.Create(&models.Category{Name: "Gaming"}).Error)

	w := do(t, r, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
	assert.Equal(t, "Gaming", categories[0].Name)
	assert.Equal(t, "gaming", categories[0].Slug)
	assert.Equal(t, "Music", categories[1].Name)
}
