package controllers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/models"
	"github.com/yooputer/eng-tube/pagination"
)

// defaultPageSize applies when the caller sends no limit.
const defaultPageSize = 20

// Correlated aggregate subqueries joined into every video page. Computed by
// the store in the same round trip as the page query, over the full child
// set, never per retained row.
const (
	viewCountExpr    = "(SELECT COUNT(*) FROM video_views WHERE video_views.video_id = videos.id)"
	likeCountExpr    = "(SELECT COUNT(*) FROM video_reactions WHERE video_reactions.video_id = videos.id AND video_reactions.type = 'like')"
	dislikeCountExpr = "(SELECT COUNT(*) FROM video_reactions WHERE video_reactions.video_id = videos.id AND video_reactions.type = 'dislike')"
)

// Sort specs for every list endpoint. All descending with an id tie-break;
// the cursor a spec issues is only accepted back by the same spec.
var (
	videoRecencySort = pagination.SortSpec{
		Name: "video_recency", Kind: pagination.KindTime,
		Expr: "videos.updated_at", TieBreak: "videos.id",
	}
	videoTrendingSort = pagination.SortSpec{
		Name: "video_trending", Kind: pagination.KindCount,
		Expr: viewCountExpr, TieBreak: "videos.id",
	}
	commentRecencySort = pagination.SortSpec{
		Name: "comment_recency", Kind: pagination.KindTime,
		Expr: "comments.updated_at", TieBreak: "comments.id",
	}
	playlistRecencySort = pagination.SortSpec{
		Name: "playlist_recency", Kind: pagination.KindTime,
		Expr: "playlists.updated_at", TieBreak: "playlists.id",
	}
	subscriptionRecencySort = pagination.SortSpec{
		Name: "subscription_recency", Kind: pagination.KindTime,
		Expr: "subscriptions.updated_at", TieBreak: "subscriptions.creator_id",
	}
	historySort = pagination.SortSpec{
		Name: "history_viewed_at", Kind: pagination.KindTime,
		Expr: "video_views.updated_at", TieBreak: "videos.id",
	}
	likedSort = pagination.SortSpec{
		Name: "liked_at", Kind: pagination.KindTime,
		Expr: "video_reactions.updated_at", TieBreak: "videos.id",
	}
	playlistMemberSort = pagination.SortSpec{
		Name: "playlist_member", Kind: pagination.KindTime,
		Expr: "playlist_videos.created_at", TieBreak: "videos.id",
	}
)

// VideoRow is one row of a video listing: the video, its owner and the
// derived counts.
type VideoRow struct {
	models.Video
	UserName     string `json:"user_name"`
	UserImageURL string `json:"user_image_url"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	DislikeCount int64  `json:"dislike_count"`
}

type HistoryVideoRow struct {
	VideoRow
	ViewedAt time.Time `json:"viewed_at"`
}

type LikedVideoRow struct {
	VideoRow
	LikedAt time.Time `json:"liked_at"`
}

type PlaylistVideoRow struct {
	VideoRow
	AddedAt time.Time `json:"added_at"`
}

func videoRowCursor(r VideoRow) pagination.Cursor {
	return pagination.TimeCursor(r.UpdatedAt, r.ID)
}

const videoListColumns = `videos.*,
	users.name AS user_name,
	users.image_url AS user_image_url,
	` + viewCountExpr + ` AS view_count,
	` + likeCountExpr + ` AS like_count,
	` + dislikeCountExpr + ` AS dislike_count`

// videoListQuery is the base page query shared by every video listing.
func videoListQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Video{}).
		Select(videoListColumns).
		Joins("JOIN users ON users.id = videos.user_id")
}

func publicVideos(q *gorm.DB) *gorm.DB {
	return q.Where("videos.visibility = ?", models.VisibilityPublic)
}

// videoDetail is the getOne shape: aggregates plus the caller's overlay. The
// overlay subqueries are restricted to the viewer id; for an anonymous caller
// (uuid.Nil) they resolve to absent/false rather than excluding the row.
type videoDetail struct {
	models.Video
	UserName         string               `json:"user_name"`
	UserImageURL     string               `json:"user_image_url"`
	ViewCount        int64                `json:"view_count"`
	LikeCount        int64                `json:"like_count"`
	DislikeCount     int64                `json:"dislike_count"`
	SubscriberCount  int64                `json:"subscriber_count"`
	ViewerSubscribed bool                 `json:"viewer_subscribed"`
	ViewerReaction   *models.ReactionType `json:"viewer_reaction,omitempty"`
}

func videoDetailQuery(db *gorm.DB, viewerID uuid.UUID) *gorm.DB {
	return db.Model(&models.Video{}).
		Select(`videos.*,
			users.name AS user_name,
			users.image_url AS user_image_url,
			`+viewCountExpr+` AS view_count,
			`+likeCountExpr+` AS like_count,
			`+dislikeCountExpr+` AS dislike_count,
			(SELECT COUNT(*) FROM subscriptions WHERE subscriptions.creator_id = videos.user_id) AS subscriber_count,
			EXISTS(SELECT 1 FROM subscriptions WHERE subscriptions.creator_id = videos.user_id AND subscriptions.viewer_id = ?) AS viewer_subscribed,
			(SELECT type FROM video_reactions WHERE video_reactions.video_id = videos.id AND video_reactions.user_id = ?) AS viewer_reaction`,
			viewerID, viewerID).
		Joins("JOIN users ON users.id = videos.user_id")
}
