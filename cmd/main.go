package main

import (
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yooputer/eng-tube/config"
	"github.com/yooputer/eng-tube/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process env")
	}

	if err := config.InitLogger(); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer config.Log.Sync()

	db, err := config.InitDB()
	if err != nil {
		config.Log.Fatal("database init failed", zap.Error(err))
	}

	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	config.Log.Info("server listening", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		config.Log.Fatal("server stopped", zap.Error(err))
	}
}
