package storage

import (
	"log"
	"time"

	"gosip/backend/internal/models"

	"github.com/lib/pq"
)

// SaveMessage persists a new message. The read-set always starts with the
// sender, which keeps the live unread count correct without special-casing
// the author.
func (s *Service) SaveMessage(msg *models.Message) error {
	if !msg.ReadByUser(msg.SenderGoSipID) {
		msg.ReadBy = append(msg.ReadBy, msg.SenderGoSipID)
	}
	if msg.DeletedFor == nil {
		msg.DeletedFor = pq.StringArray{}
	}
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.ChatRoomID, err)
		return err
	}
	return nil
}

// MessagesForRoom returns the room's messages in send order, excluding those
// the viewer soft-deleted for themselves.
func (s *Service) MessagesForRoom(chatRoomID, viewer string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.Where("chat_room_id = ?", chatRoomID).
		Where("NOT (? = ANY(COALESCE(deleted_for, '{}')))", viewer).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for room %s: %v", chatRoomID, err)
		return nil, err
	}
	return messages, nil
}

// MarkMessagesRead adds the reader to the read-set of every message in the
// room not already containing it, in a single statement.
func (s *Service) MarkMessagesRead(chatRoomID, reader string) error {
	return s.DB.Exec(`UPDATE messages
		SET read_by = array_append(COALESCE(read_by, '{}'), ?)
		WHERE chat_room_id = ?
		  AND NOT (? = ANY(COALESCE(read_by, '{}')))`,
		reader, chatRoomID, reader).Error
}

// SoftDeleteMessages hides every message in the room from one identity
// without touching what other members see.
func (s *Service) SoftDeleteMessages(chatRoomID, goSipID string) error {
	return s.DB.Exec(`UPDATE messages
		SET deleted_for = array_append(COALESCE(deleted_for, '{}'), ?)
		WHERE chat_room_id = ?
		  AND NOT (? = ANY(COALESCE(deleted_for, '{}')))`,
		goSipID, chatRoomID, goSipID).Error
}

// CountUnread live-counts the room's messages whose read-set excludes the
// given identity. Never cached, so it cannot drift from the persisted state.
func (s *Service) CountUnread(chatRoomID, goSipID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Message{}).
		Where("chat_room_id = ?", chatRoomID).
		Where("NOT (? = ANY(COALESCE(read_by, '{}')))", goSipID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeExpiredMessages deletes messages older than the retention cutoff and
// returns how many rows went away. Stands in for the TTL index the message
// store relies on.
func (s *Service) PurgeExpiredMessages(olderThan time.Time) (int64, error) {
	res := s.DB.Where("created_at < ?", olderThan).Delete(&models.Message{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// StartRetentionLoop purges expired messages every interval until stop is
// closed. Run it in its own goroutine from main.
func (s *Service) StartRetentionLoop(ttl, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			purged, err := s.PurgeExpiredMessages(time.Now().Add(-ttl))
			if err != nil {
				log.Printf("ERROR: message retention sweep failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("Retention sweep purged %d expired messages", purged)
			}
		}
	}
}
