package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/controllers"
	"github.com/yooputer/eng-tube/middleware"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	videos := api.Group("/videos")
	{
		videos.POST("/webhook", controllers.MediaWebhook)

		public := videos.Group("")
		public.Use(middleware.OptionalAuthMiddleware())
		{
			public.GET("", controllers.GetVideos)
			public.GET("/trending", controllers.GetTrendingVideos)
			public.GET("/:id", controllers.GetVideo)
			public.GET("/:id/suggestions", controllers.GetSuggestions)
			public.GET("/:id/comments", controllers.GetComments)
		}

		private := videos.Group("")
		private.Use(middleware.AuthMiddleware())
		{
			private.GET("/subscribed", controllers.GetSubscribedVideos)
			private.POST("/:id/views", controllers.CreateVideoView)
			private.POST("/:id/like", controllers.LikeVideo)
			private.POST("/:id/dislike", controllers.DislikeVideo)
		}
	}

	studio := api.Group("/studio/videos")
	studio.Use(middleware.AuthMiddleware())
	{
		studio.POST("", controllers.CreateVideo)
		studio.GET("", controllers.GetStudioVideos)
		studio.GET("/:id", controllers.GetStudioVideo)
		studio.PUT("/:id", controllers.UpdateVideo)
		studio.DELETE("/:id", controllers.DeleteVideo)
		studio.POST("/:id/thumbnail", controllers.UploadThumbnail)
		studio.POST("/:id/thumbnail/restore", controllers.RestoreThumbnail)
		studio.POST("/:id/revalidate", controllers.RevalidateVideo)
		studio.POST("/:id/generate-title", controllers.GenerateTitle)
		studio.POST("/:id/generate-description", controllers.GenerateDescription)
	}

	comments := api.Group("/comments")
	comments.Use(middleware.AuthMiddleware())
	{
		comments.POST("", controllers.CreateComment)
		comments.DELETE("/:id", controllers.DeleteComment)
		comments.POST("/:id/like", controllers.LikeComment)
		comments.POST("/:id/dislike", controllers.DislikeComment)
	}

	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(middleware.AuthMiddleware())
	{
		subscriptions.GET("", controllers.GetSubscriptions)
		subscriptions.POST("/:user_id", controllers.Subscribe)
		subscriptions.DELETE("/:user_id", controllers.Unsubscribe)
	}

	playlists := api.Group("/playlists")
	playlists.Use(middleware.AuthMiddleware())
	{
		playlists.POST("", controllers.CreatePlaylist)
		playlists.GET("", controllers.GetPlaylists)
		playlists.GET("/history", controllers.GetHistory)
		playlists.GET("/liked", controllers.GetLiked)
		playlists.GET("/for-video/:video_id", controllers.GetPlaylistsForVideo)
		playlists.GET("/:id/videos", controllers.GetPlaylistVideos)
		playlists.DELETE("/:id", controllers.DeletePlaylist)
		playlists.POST("/:id/videos/:video_id", controllers.AddPlaylistVideo)
		playlists.DELETE("/:id/videos/:video_id", controllers.RemovePlaylistVideo)
	}

	api.GET("/search", controllers.SearchVideos)
	api.GET("/categories", controllers.GetCategories)

	users := api.Group("/users")
	{
		users.GET("/:id", middleware.OptionalAuthMiddleware(), controllers.GetUser)

		me := users.Group("/me")
		me.Use(middleware.AuthMiddleware())
		{
			me.PUT("", controllers.UpdateProfile)
			me.POST("/banner", controllers.UploadBanner)
			me.DELETE("/banner", controllers.RemoveBanner)
		}
	}

	return r
}
