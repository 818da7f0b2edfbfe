package models

import (
	"fmt"
	"math/rand"

	"github.com/lib/pq" // needed for pq.StringArray
	"gorm.io/gorm"
)

// DefaultProfilePic is used when a user has not uploaded an avatar.
const DefaultProfilePic = "https://res.cloudinary.com/df63mjue3/image/upload/v1742656391/GoSipDefaultProfilePic_ugv59u.jpg"

// colors is the palette a new user's color tag is drawn from.
var colors = []string{
	"#FF5733", "#33FF57", "#3357FF", "#FF33A1", "#A133FF",
	"#FFD700", "#FF4500", "#32CD32", "#00CED1", "#8A2BE2",
	"#DC143C", "#20B2AA", "#FF8C00", "#9370DB", "#3CB371",
	"#7B68EE", "#ADFF2F", "#4682B4", "#FF69B4", "#BDB76B",
}

// User represents a registered GoSip user. Registration itself happens in the
// account service; the gateway mutates friends, friendRequests and the
// notification counter, and never deletes a user.
type User struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	GoSipID string `gorm:"uniqueIndex;not null" json:"GoSipID"`
	Name    string `json:"name"`
	Email   string `gorm:"uniqueIndex;not null" json:"email"`
	// Password is a bcrypt hash owned by the account service. The gateway
	// never reads it.
	Password   string `json:"-"`
	ProfilePic string `json:"profilePic"`
	Color      string `json:"color"`
	// Friends and FriendRequests hold GoSipIDs. Stored as text[] so membership
	// changes can be expressed as atomic array operations in SQL.
	Friends             pq.StringArray `gorm:"type:text[]" json:"friends"`
	FriendRequests      pq.StringArray `gorm:"type:text[]" json:"friendRequests"`
	UnreadNotifications int            `json:"unreadNotifications"`
}

// NewGoSipID generates an identity handle in the GS-XXXXXX-XXXXXX format.
// Uniqueness is enforced by the database index; collisions are vanishingly
// rare so there is no retry loop here.
func NewGoSipID() string {
	hex := func() string { return fmt.Sprintf("%06X", rand.Intn(0x1000000)) }
	return fmt.Sprintf("GS-%s-%s", hex(), hex())
}

// BeforeCreate fills in the generated fields the account service leaves empty:
// the GoSipID handle, the color tag and the default avatar.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.GoSipID == "" {
		u.GoSipID = NewGoSipID()
	}
	if u.Color == "" {
		u.Color = colors[rand.Intn(len(colors))]
	}
	if u.ProfilePic == "" {
		u.ProfilePic = DefaultProfilePic
	}
	return
}

// UserSummary is the public projection of a user sent to other clients.
type UserSummary struct {
	Name       string `json:"name"`
	GoSipID    string `json:"GoSipID"`
	ProfilePic string `json:"profilePic"`
	Color      string `json:"color,omitempty"`
}

// Summary returns the user's public projection.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Name:       u.Name,
		GoSipID:    u.GoSipID,
		ProfilePic: u.ProfilePic,
		Color:      u.Color,
	}
}
