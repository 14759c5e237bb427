package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooputer/eng-tube/models"
)

func TestSubscribeLifecycle(t *testing.T) {
	r, db := newServer(t)
	creator, _ := seedUser(t, db, "creator")
	viewer, token := seedUser(t, db, "viewer")

	path := "/api/subscriptions/" + creator.ID.String()

	countRows := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Subscription{}).
			Where("viewer_id = ? AND creator_id = ?", viewer.ID, creator.ID).Count(&n).Error)
		return n
	}

	t.Run("subscribe creates", func(t *testing.T) {
		w := do(t, r, http.MethodPost, path, token, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, int64(1), countRows())
	})

	t.Run("duplicate subscribe is a no-op returning the existing row", func(t *testing.T) {
		w := do(t, r, http.MethodPost, path, token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), countRows())

		// The body is the stored row, not a zero-valued echo.
		body := decodeBody(t, w)
		assert.Equal(t, creator.ID.String(), body["creator_id"])
		createdAt, err := time.Parse(time.RFC3339Nano, body["created_at"].(string))
		require.NoError(t, err)
		assert.False(t, createdAt.IsZero())
		assert.Greater(t, createdAt.Year(), 2000)
	})

	t.Run("unsubscribe removes", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), countRows())
	})

	t.Run("unsubscribe when absent is not found", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", errorCode(t, w))
	})

	t.Run("self subscription is rejected", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/subscriptions/"+viewer.ID.String(), token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_argument", errorCode(t, w))
	})

	t.Run("unknown creator is not found", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/subscriptions/"+uuid.NewString(), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetSubscriptions(t *testing.T) {
	r, db := newServer(t)
	first, _ := seedUser(t, db, "first creator")
	second, _ := seedUser(t, db, "second creator")
	viewer, token := seedUser(t, db, "viewer")
	fan, _ := seedUser(t, db, "fan")

	require.NoError(t, db.Create(&models.Subscription{ViewerID: viewer.ID, CreatorID: first.ID, UpdatedAt: minuteOffset(1)}).Error)
	require.NoError(t, db.Create(&models.Subscription{ViewerID: viewer.ID, CreatorID: second.ID, UpdatedAt: minuteOffset(2)}).Error)
	require.NoError(t, db.Create(&models.Subscription{ViewerID: fan.ID, CreatorID: first.ID, UpdatedAt: minuteOffset(3)}).Error)

	w := do(t, r, http.MethodGet, "/api/subscriptions?limit=10", token, nil)
	p := decodePage(t, w)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "second creator", p.Items[0]["creator_name"])
	assert.Equal(t, "first creator", p.Items[1]["creator_name"])
	// first creator has the viewer and the fan.
	assert.Equal(t, float64(2), p.Items[1]["subscriber_count"])
}
