package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()

	t.Run("time", func(t *testing.T) {
		at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
		c := TimeCursor(at, id)
		c.Sort = "video_recency"

		got, err := Decode(c.Encode())
		require.NoError(t, err)
		assert.Equal(t, "video_recency", got.Sort)
		require.NotNil(t, got.Time)
		assert.True(t, got.Time.Equal(at))
		assert.Nil(t, got.Count)
		assert.Equal(t, id, got.ID)
	})

	t.Run("count", func(t *testing.T) {
		c := CountCursor(42, id)
		c.Sort = "video_trending"

		got, err := Decode(c.Encode())
		require.NoError(t, err)
		require.NotNil(t, got.Count)
		assert.Equal(t, int64(42), *got.Count)
		assert.Nil(t, got.Time)
	})
}

func TestDecodeRejectsMalformedTokens(t *testing.T) {
	for name, token := range map[string]string{
		"not base64":   "!!!not-base64!!!",
		"not json":     "bm90IGpzb24",
		"empty object": "e30",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(token)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}

func TestDecodeForChecksSpecShape(t *testing.T) {
	timeSpec := SortSpec{Name: "recency", Kind: KindTime, Expr: "t", TieBreak: "id"}
	countSpec := SortSpec{Name: "trending", Kind: KindCount, Expr: "n", TieBreak: "id"}

	c := TimeCursor(time.Now().UTC(), uuid.New())
	c.Sort = timeSpec.Name
	token := c.Encode()

	t.Run("empty token is first page", func(t *testing.T) {
		got, err := decodeFor(timeSpec, "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("matching spec accepts", func(t *testing.T) {
		got, err := decodeFor(timeSpec, token)
		require.NoError(t, err)
		require.NotNil(t, got)
	})

	t.Run("other spec rejects", func(t *testing.T) {
		_, err := decodeFor(countSpec, token)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})

	t.Run("right name wrong value shape rejects", func(t *testing.T) {
		bad := TimeCursor(time.Now().UTC(), uuid.New())
		bad.Sort = countSpec.Name
		_, err := decodeFor(countSpec, bad.Encode())
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})
}
