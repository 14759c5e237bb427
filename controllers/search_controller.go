package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/pagination"
)

// SearchVideos pages public videos whose title matches the query,
// case-insensitively, newest first. An empty query just lists everything.
// GET /api/search?query=&category_id=&cursor=&limit=
func SearchVideos(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	limit, err := pagination.ParseLimit(c.Query("limit"), defaultPageSize)
	if err != nil {
		abortPageError(c, err)
		return
	}

	q := publicVideos(videoListQuery(db))

	if query := strings.TrimSpace(c.Query("query")); query != "" {
		q = q.Where("LOWER(videos.title) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			abortInvalidArgument(c)
			return
		}
		q = q.Where("videos.category_id = ?", categoryID)
	}

	items, next, err := pagination.Paginate(q, videoRecencySort, c.Query("cursor"), limit, videoRowCursor)
	if err != nil {
		abortPageError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(items, next))
}
