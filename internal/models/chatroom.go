package models

import (
	"time"

	"github.com/lib/pq"
)

// ChatRoom is a 1:1 room between two friends. Exactly one room exists per
// friendship; it is created when a friend request is accepted and deleted,
// together with its messages, when the friendship is removed.
type ChatRoom struct {
	ChatRoomID string         `gorm:"primaryKey" json:"chatRoomID"`
	Members    pq.StringArray `gorm:"type:text[]" json:"members"` // always exactly two GoSipIDs
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
