package chathub_test

import (
	"sync"
	"time"

	"gosip/backend/internal/models"
	"gosip/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify/mock implementation of the storage.Storage
// interface, used to isolate the gateway services from the database.
type MockStorage struct {
	mock.Mock
}

// User operations

func (m *MockStorage) FindUserByGoSipID(goSipID string) (*models.User, error) {
	args := m.Called(goSipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) AddFriendRequest(to, from string) (bool, error) {
	args := m.Called(to, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) PullFriendRequest(owner, requester string) error {
	args := m.Called(owner, requester)
	return args.Error(0)
}

func (m *MockStorage) AddFriend(a, b string) error {
	args := m.Called(a, b)
	return args.Error(0)
}

func (m *MockStorage) RemoveFriend(a, b string) error {
	args := m.Called(a, b)
	return args.Error(0)
}

func (m *MockStorage) ResetUnreadNotifications(goSipID string) error {
	args := m.Called(goSipID)
	return args.Error(0)
}

// 1:1 room operations

func (m *MockStorage) CreateChatRoom(members []string) (*models.ChatRoom, error) {
	args := m.Called(members)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) FindChatRoomByID(chatRoomID string) (*models.ChatRoom, error) {
	args := m.Called(chatRoomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) FindChatRoomByMembers(a, b string) (*models.ChatRoom, error) {
	args := m.Called(a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) FindChatRoomsForMember(goSipID string) ([]models.ChatRoom, error) {
	args := m.Called(goSipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatRoom), args.Error(1)
}

func (m *MockStorage) TouchChatRoom(chatRoomID string) error {
	args := m.Called(chatRoomID)
	return args.Error(0)
}

func (m *MockStorage) DeleteChatRoom(chatRoomID string) error {
	args := m.Called(chatRoomID)
	return args.Error(0)
}

// Group room operations

func (m *MockStorage) CreateGroupChatRoom(name, avatar, admin string, members []string) (*models.GroupChatRoom, error) {
	args := m.Called(name, avatar, admin, members)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupChatRoom), args.Error(1)
}

func (m *MockStorage) FindGroupChatRoomByID(groupChatRoomID string) (*models.GroupChatRoom, error) {
	args := m.Called(groupChatRoomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupChatRoom), args.Error(1)
}

func (m *MockStorage) FindGroupChatRoomsForMember(goSipID string) ([]models.GroupChatRoom, error) {
	args := m.Called(goSipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupChatRoom), args.Error(1)
}

func (m *MockStorage) UpdateGroupName(groupChatRoomID, name string) error {
	args := m.Called(groupChatRoomID, name)
	return args.Error(0)
}

func (m *MockStorage) UpdateGroupAvatar(groupChatRoomID, avatar string) error {
	args := m.Called(groupChatRoomID, avatar)
	return args.Error(0)
}

func (m *MockStorage) TouchGroupChatRoom(groupChatRoomID string) error {
	args := m.Called(groupChatRoomID)
	return args.Error(0)
}

func (m *MockStorage) AddGroupMembers(groupChatRoomID string, goSipIDs []string) error {
	args := m.Called(groupChatRoomID, goSipIDs)
	return args.Error(0)
}

func (m *MockStorage) RemoveGroupMember(groupChatRoomID, goSipID, newAdmin string) error {
	args := m.Called(groupChatRoomID, goSipID, newAdmin)
	return args.Error(0)
}

func (m *MockStorage) DeleteGroupChatRoom(groupChatRoomID string) error {
	args := m.Called(groupChatRoomID)
	return args.Error(0)
}

// Message operations

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) MessagesForRoom(chatRoomID, viewer string) ([]models.Message, error) {
	args := m.Called(chatRoomID, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) MarkMessagesRead(chatRoomID, reader string) error {
	args := m.Called(chatRoomID, reader)
	return args.Error(0)
}

func (m *MockStorage) SoftDeleteMessages(chatRoomID, goSipID string) error {
	args := m.Called(chatRoomID, goSipID)
	return args.Error(0)
}

func (m *MockStorage) CountUnread(chatRoomID, goSipID string) (int64, error) {
	args := m.Called(chatRoomID, goSipID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PurgeExpiredMessages(olderThan time.Time) (int64, error) {
	args := m.Called(olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// Event bridge

func (m *MockStorage) PublishEvent(env storage.EventEnvelope) error {
	args := m.Called(env)
	return args.Error(0)
}

func (m *MockStorage) SubscribeEvents() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}

// MockClient is a test double for the chathub.Client interface. Events sent
// to it land on the buffered Recv channel for assertion.
type MockClient struct {
	goSipID string
	Recv    chan models.ServerEvent
}

func newMockClient(goSipID string) *MockClient {
	return &MockClient{
		goSipID: goSipID,
		Recv:    make(chan models.ServerEvent, 16),
	}
}

func (c *MockClient) GetGoSipID() string { return c.goSipID }

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.Recv }

func (c *MockClient) Run() {}

func (c *MockClient) Close() { close(c.Recv) }

// drain returns everything currently buffered.
func (c *MockClient) drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case env := <-c.Recv:
			events = append(events, env)
		default:
			return events
		}
	}
}

// recordingEmitter captures every Emit call so service tests can assert the
// fan-out targets and payloads without a registry or Redis.
type recordedEmit struct {
	To    string
	Event string
	Data  any
}

type recordingEmitter struct {
	mu    sync.Mutex
	emits []recordedEmit
}

func (e *recordingEmitter) Emit(to, event string, data any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emits = append(e.emits, recordedEmit{To: to, Event: event, Data: data})
}

func (e *recordingEmitter) all() []recordedEmit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]recordedEmit(nil), e.emits...)
}

func (e *recordingEmitter) eventsFor(to string) []recordedEmit {
	var out []recordedEmit
	for _, em := range e.all() {
		if em.To == to {
			out = append(out, em)
		}
	}
	return out
}

func (e *recordingEmitter) find(to, event string) (recordedEmit, bool) {
	for _, em := range e.all() {
		if em.To == to && em.Event == event {
			return em, true
		}
	}
	return recordedEmit{}, false
}
