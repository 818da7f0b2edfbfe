package models

import (
	"time"

	"github.com/lib/pq"
)

// Message is a chat message addressed to a direct or group room (both share
// the chatRoomID namespace). ReadBy contains the sender from creation and
// only ever grows; DeletedFor hides the message from single users without
// removing it for the rest of the room. Rows older than the retention window
// are purged by the storage layer.
type Message struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ChatRoomID    string         `gorm:"index;not null" json:"chatRoomID"`
	SenderGoSipID string         `gorm:"not null" json:"senderGoSipID"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	CreatedAt     time.Time      `json:"createdAt"`
	ReadBy        pq.StringArray `gorm:"type:text[]" json:"readBy"`
	DeletedFor    pq.StringArray `gorm:"type:text[]" json:"deletedFor"`
}

// ReadByUser reports whether the given identity has read the message.
func (m *Message) ReadByUser(goSipID string) bool {
	for _, id := range m.ReadBy {
		if id == goSipID {
			return true
		}
	}
	return false
}
