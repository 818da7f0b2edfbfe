package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gosip/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced user or room does not exist.
var ErrNotFound = errors.New("record not found")

// Storage is the persistence surface the gateway depends on. Every mutation
// of a set-valued column is a single atomic SQL statement (array_append /
// array_remove guarded by a membership check), never a read-modify-write in
// application code, so concurrently scheduled handlers cannot lose updates.
type Storage interface {
	// Users
	FindUserByGoSipID(goSipID string) (*models.User, error)
	AddFriendRequest(to, from string) (bool, error)
	PullFriendRequest(owner, requester string) error
	AddFriend(a, b string) error
	RemoveFriend(a, b string) error
	ResetUnreadNotifications(goSipID string) error

	// 1:1 chat rooms
	CreateChatRoom(members []string) (*models.ChatRoom, error)
	FindChatRoomByID(chatRoomID string) (*models.ChatRoom, error)
	FindChatRoomByMembers(a, b string) (*models.ChatRoom, error)
	FindChatRoomsForMember(goSipID string) ([]models.ChatRoom, error)
	TouchChatRoom(chatRoomID string) error
	DeleteChatRoom(chatRoomID string) error

	// Group chat rooms
	CreateGroupChatRoom(name, avatar, admin string, members []string) (*models.GroupChatRoom, error)
	FindGroupChatRoomByID(groupChatRoomID string) (*models.GroupChatRoom, error)
	FindGroupChatRoomsForMember(goSipID string) ([]models.GroupChatRoom, error)
	UpdateGroupName(groupChatRoomID, name string) error
	UpdateGroupAvatar(groupChatRoomID, avatar string) error
	TouchGroupChatRoom(groupChatRoomID string) error
	AddGroupMembers(groupChatRoomID string, goSipIDs []string) error
	RemoveGroupMember(groupChatRoomID, goSipID, newAdmin string) error
	DeleteGroupChatRoom(groupChatRoomID string) error

	// Messages
	SaveMessage(msg *models.Message) error
	MessagesForRoom(chatRoomID, viewer string) ([]models.Message, error)
	MarkMessagesRead(chatRoomID, reader string) error
	SoftDeleteMessages(chatRoomID, goSipID string) error
	CountUnread(chatRoomID, goSipID string) (int64, error)
	PurgeExpiredMessages(olderThan time.Time) (int64, error)

	// Cross-instance event bridge
	PublishEvent(env EventEnvelope) error
	SubscribeEvents() *redis.PubSub
}

// Service implements Storage over PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService constructor.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// FindUserByGoSipID loads a user by identity handle.
func (s *Service) FindUserByGoSipID(goSipID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("go_sip_id = ?", goSipID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", goSipID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddFriendRequest records a pending friend request from `from` on `to`'s
// record and bumps the unread-notification counter in the same statement.
// Returns false without error when the request was already pending, so the
// counter is never bumped twice for one request.
func (s *Service) AddFriendRequest(to, from string) (bool, error) {
	res := s.DB.Exec(`UPDATE users
		SET friend_requests = array_append(COALESCE(friend_requests, '{}'), ?),
		    unread_notifications = unread_notifications + 1
		WHERE go_sip_id = ?
		  AND NOT (? = ANY(COALESCE(friend_requests, '{}')))`,
		from, to, from)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PullFriendRequest removes a requester from the owner's pending set.
// Removing an absent requester is a no-op.
func (s *Service) PullFriendRequest(owner, requester string) error {
	return s.DB.Exec(`UPDATE users
		SET friend_requests = array_remove(COALESCE(friend_requests, '{}'), ?)
		WHERE go_sip_id = ?`,
		requester, owner).Error
}

// AddFriend adds each identity to the other's friend set. Each direction is
// its own atomic statement; re-adding an existing friend is a no-op.
func (s *Service) AddFriend(a, b string) error {
	if err := s.addFriendOneWay(a, b); err != nil {
		return err
	}
	return s.addFriendOneWay(b, a)
}

func (s *Service) addFriendOneWay(owner, friend string) error {
	return s.DB.Exec(`UPDATE users
		SET friends = array_append(COALESCE(friends, '{}'), ?)
		WHERE go_sip_id = ?
		  AND NOT (? = ANY(COALESCE(friends, '{}')))`,
		friend, owner, friend).Error
}

// RemoveFriend removes each identity from the other's friend set.
func (s *Service) RemoveFriend(a, b string) error {
	if err := s.DB.Exec(`UPDATE users
		SET friends = array_remove(COALESCE(friends, '{}'), ?)
		WHERE go_sip_id = ?`, b, a).Error; err != nil {
		return err
	}
	return s.DB.Exec(`UPDATE users
		SET friends = array_remove(COALESCE(friends, '{}'), ?)
		WHERE go_sip_id = ?`, a, b).Error
}

// ResetUnreadNotifications zeroes the notification counter, called when the
// user fetches their own record.
func (s *Service) ResetUnreadNotifications(goSipID string) error {
	return s.DB.Model(&models.User{}).
		Where("go_sip_id = ?", goSipID).
		Update("unread_notifications", 0).Error
}
