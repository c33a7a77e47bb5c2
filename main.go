package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"slidecast/config"
	"slidecast/handlers"
	"slidecast/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("configuration loaded", "config", cfg.String())

	// The whole render path depends on ffmpeg being present
	if err := utils.CheckFFmpeg(); err != nil {
		sugar.Fatalw("ffmpeg check failed", "error", err)
	}

	// Create Gin router
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Initialize webinar handler
	webinarHandler, err := handlers.NewWebinarHandler(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize handler", "error", err)
	}

	// API routes
	api := router.Group("/api")
	{
		api.POST("/sessions", webinarHandler.CreateSession)
		api.GET("/sessions/:id", webinarHandler.GetSession)
		api.PUT("/sessions/:id", webinarHandler.UpdateSession)
		api.POST("/sessions/:id/sections", webinarHandler.AddSection)
		api.PUT("/sessions/:id/sections/:index", webinarHandler.UpdateSection)
		api.POST("/sessions/:id/script", webinarHandler.GenerateScript)
		api.PUT("/sessions/:id/script", webinarHandler.UpdateScript)
		api.POST("/sessions/:id/audio", webinarHandler.SynthesizeAudio)
		api.GET("/sessions/:id/audio", webinarHandler.DownloadAudio)
		api.POST("/sessions/:id/images", webinarHandler.UploadImages)
		api.GET("/sessions/:id/durations", webinarHandler.ProposeDurations)
		api.POST("/sessions/:id/render", webinarHandler.RenderVideo)
		api.GET("/sessions/:id/video", webinarHandler.DownloadVideo)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	sugar.Infow("starting server", "addr", addr)
	if err := router.Run(addr); err != nil {
		sugar.Fatalw("server exited", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
