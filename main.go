// main.go - Signage content scheduling server
package main

import (
	"log"
	"strings"
	"sync"
	"time"

	"signagebe/internal/config"
	"signagebe/internal/database"
	"signagebe/internal/handlers"
	"signagebe/internal/middleware"
	"signagebe/internal/notify"
	"signagebe/internal/services"
	"signagebe/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Environment)

	// Initialize database connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Firebase service
	firebaseService, err := services.NewFirebaseService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Firebase service:", err)
	}

	// Initialize R2 storage
	r2Client, err := storage.NewR2Client(cfg.R2Config)
	if err != nil {
		log.Fatal("Failed to initialize R2 client:", err)
	}

	// Notification hub for dashboard events
	hub := notify.NewHub()
	go hub.Run()

	// Initialize services
	mediaService := services.NewMediaService(db)
	playlistService := services.NewPlaylistService(db)
	channelService := services.NewChannelService(db)
	scheduleService := services.NewScheduleService(db)
	overrideService := services.NewOverrideService(db, hub)
	resolverService := services.NewResolverService(db, playlistService, scheduleService, overrideService)
	uploadService := services.NewUploadService(r2Client)

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(mediaService)
	playlistHandler := handlers.NewPlaylistHandler(playlistService)
	channelHandler := handlers.NewChannelHandler(channelService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	contentHandler := handlers.NewContentHandler(resolverService, cfg.DisplayCacheSeconds)
	quickActionHandler := handlers.NewQuickActionHandler(overrideService)
	uploadHandler := handlers.NewUploadHandler(uploadService)

	// Initialize rate limiter
	rateLimiter := NewRateLimiter()

	// Setup router
	router := setupRouter(cfg, rateLimiter)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "healthy",
			"app":      "signage-scheduling",
			"database": database.HealthCheck(),
		})
	})

	setupRoutes(router, firebaseService, hub,
		mediaHandler, playlistHandler, channelHandler, scheduleHandler,
		contentHandler, quickActionHandler, uploadHandler)

	// Start server
	port := cfg.Port
	log.Printf("🚀 Signage scheduling server starting on port %s", port)
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("💾 Database connected")
	log.Printf("🔥 Firebase service initialized")
	log.Printf("☁️  R2 storage initialized")
	log.Printf("🔌 Notification hub running")

	log.Fatal(router.Run(":" + port))
}

func setupRouter(cfg *config.Config, rateLimiter *RateLimiter) *gin.Engine {
	router := gin.Default()

	// GZIP compression; media files are served from object storage, not here
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Rate limiting
	router.Use(createRateLimitMiddleware(rateLimiter))

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			"Cache-Control", "If-None-Match", "If-Modified-Since",
			"X-Organization-ID",
			"Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version",
		},
		ExposeHeaders: []string{
			"Content-Length", "Cache-Control", "Last-Modified", "ETag",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Next()
	})

	return router
}

func setupRoutes(
	router *gin.Engine,
	firebaseService *services.FirebaseService,
	hub *notify.Hub,
	mediaHandler *handlers.MediaHandler,
	playlistHandler *handlers.PlaylistHandler,
	channelHandler *handlers.ChannelHandler,
	scheduleHandler *handlers.ScheduleHandler,
	contentHandler *handlers.ContentHandler,
	quickActionHandler *handlers.QuickActionHandler,
	uploadHandler *handlers.UploadHandler,
) {
	api := router.Group("/api/v1")

	// ===============================
	// WEBSOCKET NOTIFICATIONS
	// ===============================
	api.GET("/ws/notifications", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})

	// ===============================
	// DISPLAY ROUTES (no auth; displays only hold a service key)
	// ===============================
	display := api.Group("/signage/:serviceKey")
	display.Use(middleware.RequireScope())
	{
		display.GET("/resolve", contentHandler.Resolve)
		display.POST("/resolve", contentHandler.Resolve)
	}

	// ===============================
	// MANAGEMENT ROUTES
	// ===============================
	manage := api.Group("/signage/:serviceKey")
	manage.Use(middleware.RequireScope(), middleware.FirebaseAuth(firebaseService))
	{
		// ===== MEDIA CATALOG =====
		manage.GET("/media", mediaHandler.ListMedia)
		manage.GET("/media/library", mediaHandler.GetLibrary)
		manage.POST("/media", mediaHandler.CreateMedia)
		manage.GET("/media/:mediaId", mediaHandler.GetMedia)
		manage.PUT("/media/:mediaId", mediaHandler.UpdateMedia)
		manage.DELETE("/media/:mediaId", middleware.AdminOnly(), mediaHandler.DeleteMedia)

		// ===== PLAYLISTS =====
		manage.GET("/playlists", playlistHandler.ListPlaylists)
		manage.POST("/playlists", playlistHandler.CreatePlaylist)
		manage.GET("/playlists/:playlistId", playlistHandler.GetPlaylist)
		manage.PUT("/playlists/:playlistId", playlistHandler.UpdatePlaylist)
		manage.DELETE("/playlists/:playlistId", middleware.AdminOnly(), playlistHandler.DeletePlaylist)

		manage.POST("/playlists/:playlistId/items", playlistHandler.AddItem)
		manage.POST("/playlists/:playlistId/items/bulk", playlistHandler.BulkAddItems)
		manage.PUT("/playlists/:playlistId/items/:itemId", playlistHandler.UpdateItem)
		manage.DELETE("/playlists/:playlistId/items/:itemId", playlistHandler.DeleteItem)
		manage.POST("/playlists/:playlistId/items/reorder", playlistHandler.ReorderItems)

		// ===== CHANNELS =====
		manage.GET("/channels", channelHandler.ListChannels)
		manage.POST("/channels", channelHandler.CreateChannel)
		manage.GET("/channels/:channelId", channelHandler.GetChannel)
		manage.PUT("/channels/:channelId", channelHandler.UpdateChannel)
		manage.DELETE("/channels/:channelId", middleware.AdminOnly(), channelHandler.DeleteChannel)

		// ===== SCHEDULES =====
		manage.GET("/schedules", scheduleHandler.ListSchedules)
		manage.GET("/schedules/calendar", scheduleHandler.Calendar)
		manage.POST("/schedules", scheduleHandler.CreateSchedule)
		manage.GET("/schedules/:scheduleId", scheduleHandler.GetSchedule)
		manage.PUT("/schedules/:scheduleId", scheduleHandler.UpdateSchedule)
		manage.DELETE("/schedules/:scheduleId", middleware.AdminOnly(), scheduleHandler.DeleteSchedule)

		// ===== QUICK ACTIONS =====
		// Overrides preempt every display on the slot, so starting and
		// stopping them needs the admin claim.
		manage.GET("/quick-actions", quickActionHandler.ListOverrides)
		manage.POST("/quick-actions", middleware.AdminOnly(), quickActionHandler.Execute)
		manage.GET("/quick-actions/:overrideId", quickActionHandler.GetOverride)
		manage.POST("/quick-actions/:overrideId/stop", middleware.AdminOnly(), quickActionHandler.Stop)

		// ===== UPLOADS =====
		manage.POST("/upload", uploadHandler.UploadFile)
		manage.POST("/upload/presigned", uploadHandler.PresignedUpload)
	}
}

// In-process IP rate limiter
type RateLimiter struct {
	visitors map[string]*Visitor
	mutex    sync.RWMutex
}

type Visitor struct {
	requests int
	lastSeen time.Time
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
	}
	go rl.cleanupRoutine()
	return rl
}

func (rl *RateLimiter) Allow(ip string, limit int, window time.Duration) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	visitor, exists := rl.visitors[ip]
	now := time.Now()

	if !exists || now.Sub(visitor.lastSeen) > window {
		rl.visitors[ip] = &Visitor{
			requests: 1,
			lastSeen: now,
		}
		return true
	}

	if visitor.requests >= limit {
		return false
	}

	visitor.requests++
	visitor.lastSeen = now
	return true
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, visitor := range rl.visitors {
		if visitor.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

func createRateLimitMiddleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting for WebSocket upgrades
		if c.GetHeader("Upgrade") == "websocket" {
			c.Next()
			return
		}

		ip := c.ClientIP()
		path := c.Request.URL.Path

		var limit int
		window := time.Minute

		// Display polling is the hot path and gets the most headroom
		if strings.Contains(path, "/resolve") {
			limit = 600
		} else if strings.Contains(path, "/upload") {
			limit = 30
		} else {
			limit = 200
		}

		if !rateLimiter.Allow(ip, limit, window) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "60")

			c.JSON(429, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
				"limit":   limit,
				"window":  window.String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
