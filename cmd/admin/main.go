package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"gosip/backend/internal/config"
	"gosip/backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Small ops CLI: message retention and user inspection, run against the same
// database the gateway uses.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: purge [ttl], user <GoSipID>, unread <chatRoomID> <GoSipID>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "purge":
		ttl := cfg.MessageTTL
		if len(os.Args) > 2 {
			ttl, err = time.ParseDuration(os.Args[2])
			if err != nil {
				log.Fatalf("Invalid ttl %q: %v", os.Args[2], err)
			}
		}
		purged, err := storageSvc.PurgeExpiredMessages(time.Now().Add(-ttl))
		if err != nil {
			log.Fatalf("Purge failed: %v", err)
		}
		fmt.Printf("Purged %d messages older than %s\n", purged, ttl)

	case "user":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin user <GoSipID>")
			os.Exit(1)
		}
		user, err := storageSvc.FindUserByGoSipID(os.Args[2])
		if err != nil {
			log.Fatalf("Lookup failed: %v", err)
		}
		fmt.Printf("%s (%s)\n", user.Name, user.GoSipID)
		fmt.Printf("  friends:         %v\n", []string(user.Friends))
		fmt.Printf("  friend requests: %v\n", []string(user.FriendRequests))
		fmt.Printf("  notifications:   %d\n", user.UnreadNotifications)

	case "unread":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin unread <chatRoomID> <GoSipID>")
			os.Exit(1)
		}
		count, err := storageSvc.CountUnread(os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("Count failed: %v", err)
		}
		fmt.Printf("%d unread messages for %s in %s\n", count, os.Args[3], os.Args[2])

	default:
		fmt.Printf("Unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}
