package models

import (
	"time"

	"github.com/lib/pq"
)

// GroupChatRoom is a named room with an arbitrary member set and a single
// admin, who is always a current member. Admin reassignment happens in the
// same update that removes a departing admin from the member set.
type GroupChatRoom struct {
	GroupChatRoomID string         `gorm:"primaryKey" json:"groupChatRoomID"`
	GroupName       string         `gorm:"not null" json:"groupName"`
	GroupAvatar     string         `json:"groupAvatar"`
	Members         pq.StringArray `gorm:"type:text[]" json:"members"`
	Admin           string         `gorm:"not null" json:"admin"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
