package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"gosip/backend/internal/api/handler"
	"gosip/backend/internal/chathub"
	"gosip/backend/internal/config"
	"gosip/backend/internal/models"
	"gosip/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ChatRoom{},
		&models.GroupChatRoom{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

// corsMiddleware allows the browser client's origin with credentials, since
// the access token travels in a cookie.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func main() {
	log.Println("Starting GoSip Gateway...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	hub := chathub.NewHub(s)
	go hub.Run()

	// Messages expire after the retention window; the sweep stands in for a
	// storage-level TTL index.
	go s.StartRetentionLoop(cfg.MessageTTL, cfg.PurgePeriod, make(chan struct{}))

	r := gin.Default()
	r.Use(corsMiddleware(cfg.AllowOrigin))
	h := handler.NewHandler(hub, s, cfg.JWTSecret)

	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api", h.VerifyAuth)
	{
		api.GET("/chats", h.GetChats)
		api.POST("/chats/messages", h.GetChatMessages)
		api.POST("/chats/deletemessagesforme", h.DeleteChatMessagesForMe)

		api.GET("/groupchats", h.GetGroupChats)
		api.POST("/groupchats/messages", h.GetGroupChatMessages)
		api.POST("/groupchats/deletemessagesforme", h.DeleteGroupChatMessagesForMe)

		api.GET("/user/me", h.GetUser)
		api.GET("/user/friendrequests", h.GetFriendRequests)
		api.POST("/user/rejectrequest", h.RejectFriendRequest)
	}

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Listening on %s", cfg.Addr)
	log.Fatal(server.ListenAndServe())
}
