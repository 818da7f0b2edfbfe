package storage

import (
	"errors"
	"fmt"

	"gosip/backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CreateChatRoom creates a 1:1 room. Callers pass exactly two members.
func (s *Service) CreateChatRoom(members []string) (*models.ChatRoom, error) {
	room := &models.ChatRoom{
		ChatRoomID: uuid.New().String(),
		Members:    pq.StringArray(members),
	}
	if err := s.DB.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// FindChatRoomByID loads a 1:1 room.
func (s *Service) FindChatRoomByID(chatRoomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.Where("chat_room_id = ?", chatRoomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("chat room %s: %w", chatRoomID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindChatRoomByMembers looks up the room shared by two identities. Used to
// keep friend-request acceptance idempotent: a second accept reuses the
// existing room instead of creating a duplicate.
func (s *Service) FindChatRoomByMembers(a, b string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.Where("? = ANY(members) AND ? = ANY(members)", a, b).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("chat room for %s/%s: %w", a, b, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindChatRoomsForMember returns the user's rooms, most recently active first.
func (s *Service) FindChatRoomsForMember(goSipID string) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := s.DB.Where("? = ANY(members)", goSipID).
		Order("updated_at desc").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// TouchChatRoom bumps the room's last-activity timestamp.
func (s *Service) TouchChatRoom(chatRoomID string) error {
	return s.DB.Model(&models.ChatRoom{}).
		Where("chat_room_id = ?", chatRoomID).
		Update("updated_at", gorm.Expr("NOW()")).Error
}

// DeleteChatRoom removes the room and every message addressed to it in one
// transaction, so no orphan messages survive.
func (s *Service) DeleteChatRoom(chatRoomID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_room_id = ?", chatRoomID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("chat_room_id = ?", chatRoomID).Delete(&models.ChatRoom{}).Error
	})
}

// CreateGroupChatRoom creates a group room. The admin must be part of members.
func (s *Service) CreateGroupChatRoom(name, avatar, admin string, members []string) (*models.GroupChatRoom, error) {
	room := &models.GroupChatRoom{
		GroupChatRoomID: uuid.New().String(),
		GroupName:       name,
		GroupAvatar:     avatar,
		Members:         pq.StringArray(members),
		Admin:           admin,
	}
	if err := s.DB.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// FindGroupChatRoomByID loads a group room.
func (s *Service) FindGroupChatRoomByID(groupChatRoomID string) (*models.GroupChatRoom, error) {
	var room models.GroupChatRoom
	err := s.DB.Where("group_chat_room_id = ?", groupChatRoomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("group chat room %s: %w", groupChatRoomID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindGroupChatRoomsForMember returns the user's group rooms, most recently
// active first.
func (s *Service) FindGroupChatRoomsForMember(goSipID string) ([]models.GroupChatRoom, error) {
	var rooms []models.GroupChatRoom
	err := s.DB.Where("? = ANY(members)", goSipID).
		Order("updated_at desc").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// UpdateGroupName renames the group.
func (s *Service) UpdateGroupName(groupChatRoomID, name string) error {
	return s.DB.Model(&models.GroupChatRoom{}).
		Where("group_chat_room_id = ?", groupChatRoomID).
		Update("group_name", name).Error
}

// UpdateGroupAvatar swaps the group avatar URL.
func (s *Service) UpdateGroupAvatar(groupChatRoomID, avatar string) error {
	return s.DB.Model(&models.GroupChatRoom{}).
		Where("group_chat_room_id = ?", groupChatRoomID).
		Update("group_avatar", avatar).Error
}

// TouchGroupChatRoom bumps the group's last-activity timestamp.
func (s *Service) TouchGroupChatRoom(groupChatRoomID string) error {
	return s.DB.Model(&models.GroupChatRoom{}).
		Where("group_chat_room_id = ?", groupChatRoomID).
		Update("updated_at", gorm.Expr("NOW()")).Error
}

// AddGroupMembers appends each identity to the member set; already-present
// members are skipped by the membership guard.
func (s *Service) AddGroupMembers(groupChatRoomID string, goSipIDs []string) error {
	for _, id := range goSipIDs {
		err := s.DB.Exec(`UPDATE group_chat_rooms
			SET members = array_append(COALESCE(members, '{}'), ?)
			WHERE group_chat_room_id = ?
			  AND NOT (? = ANY(COALESCE(members, '{}')))`,
			id, groupChatRoomID, id).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveGroupMember pulls an identity from the member set. When the departing
// member is the admin the caller passes a successor, and the reassignment
// happens in the same UPDATE so the admin-is-a-member invariant never breaks.
func (s *Service) RemoveGroupMember(groupChatRoomID, goSipID, newAdmin string) error {
	if newAdmin != "" {
		return s.DB.Exec(`UPDATE group_chat_rooms
			SET members = array_remove(COALESCE(members, '{}'), ?),
			    admin = ?
			WHERE group_chat_room_id = ?`,
			goSipID, newAdmin, groupChatRoomID).Error
	}
	return s.DB.Exec(`UPDATE group_chat_rooms
		SET members = array_remove(COALESCE(members, '{}'), ?)
		WHERE group_chat_room_id = ?`,
		goSipID, groupChatRoomID).Error
}

// DeleteGroupChatRoom removes the group and all its messages in one
// transaction.
func (s *Service) DeleteGroupChatRoom(groupChatRoomID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_room_id = ?", groupChatRoomID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("group_chat_room_id = ?", groupChatRoomID).Delete(&models.GroupChatRoom{}).Error
	})
}
