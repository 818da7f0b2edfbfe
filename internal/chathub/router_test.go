package chathub_test

import (
	"errors"
	"testing"

	"gosip/backend/internal/chathub"
	"gosip/backend/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRouter(storageMock *MockStorage) (*chathub.MessageRouter, *recordingEmitter) {
	emitter := &recordingEmitter{}
	return chathub.NewMessageRouter(storageMock, emitter), emitter
}

func TestSendDirectMessage_DeliversAndAcks(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("TouchChatRoom", "room-1").Return(nil)
	storageMock.On("CountUnread", "room-1", userB).Return(int64(3), nil)

	err := router.SendDirectMessage(userA, models.SendMessagePayload{
		To:         userB,
		ChatRoomID: "room-1",
		Message:    "hey",
	})
	assert.NoError(t, err)

	delivery, ok := emitter.find(userB, models.EventReceiveMessage)
	assert.True(t, ok, "recipient gets the message")
	assert.Equal(t, "hey", delivery.Data.(models.MessageDelivery).Message.Text)
	assert.Equal(t, userA, delivery.Data.(models.MessageDelivery).Message.SenderGoSipID)

	unread, ok := emitter.find(userB, models.EventUnreadCount)
	assert.True(t, ok, "recipient gets a fresh unread count")
	assert.Equal(t, int64(3), unread.Data.(models.UnreadCountUpdate).UnreadCount)

	ack, ok := emitter.find(userA, models.EventMessageSent)
	assert.True(t, ok, "sender gets the ack")
	assert.Equal(t, "room-1", ack.Data.(models.MessageDelivery).ChatRoomID)
}

func TestSendDirectMessage_TouchFailureDoesNotFailSend(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("TouchChatRoom", "room-1").Return(errors.New("db hiccup"))
	storageMock.On("CountUnread", "room-1", userB).Return(int64(1), nil)

	err := router.SendDirectMessage(userA, models.SendMessagePayload{
		To:         userB,
		ChatRoomID: "room-1",
		Message:    "hey",
	})
	assert.NoError(t, err, "the message is persisted, a stale timestamp is tolerable")

	_, ok := emitter.find(userB, models.EventReceiveMessage)
	assert.True(t, ok)
}

func TestSendDirectMessage_PersistFailure(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(errors.New("db down"))

	err := router.SendDirectMessage(userA, models.SendMessagePayload{
		To:         userB,
		ChatRoomID: "room-1",
		Message:    "hey",
	})
	var pe *chathub.PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.Empty(t, emitter.all(), "nothing is delivered when the write fails")
}

func TestSendDirectMessage_Validation(t *testing.T) {
	storageMock := new(MockStorage)
	router, _ := newRouter(storageMock)

	var ve *chathub.ValidationError
	err := router.SendDirectMessage(userA, models.SendMessagePayload{To: userB, ChatRoomID: "room-1"})
	assert.ErrorAs(t, err, &ve, "empty message text is rejected")

	err = router.SendDirectMessage(userA, models.SendMessagePayload{Message: "hey"})
	assert.ErrorAs(t, err, &ve, "missing routing fields are rejected")

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestSendGroupMessage_FansOutExcludingSender(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	room := &models.GroupChatRoom{
		GroupChatRoomID: "group-1",
		GroupName:       "lunch",
		Members:         pq.StringArray{userA, userB, userC},
		Admin:           userA,
	}
	storageMock.On("FindGroupChatRoomByID", "group-1").Return(room, nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("TouchGroupChatRoom", "group-1").Return(nil)
	storageMock.On("CountUnread", "group-1", userB).Return(int64(2), nil)
	storageMock.On("CountUnread", "group-1", userC).Return(int64(7), nil)

	err := router.SendGroupMessage(userA, models.GroupMessagePayload{
		GroupChatRoomID: "group-1",
		Message:         "where to?",
	})
	assert.NoError(t, err)

	_, ok := emitter.find(userB, models.EventReceiveMessage)
	assert.True(t, ok)
	_, ok = emitter.find(userC, models.EventReceiveMessage)
	assert.True(t, ok)
	_, ok = emitter.find(userA, models.EventReceiveMessage)
	assert.False(t, ok, "sender never receives its own message")

	unreadB, _ := emitter.find(userB, models.EventUnreadCount)
	assert.Equal(t, int64(2), unreadB.Data.(models.UnreadCountUpdate).UnreadCount)
	unreadC, _ := emitter.find(userC, models.EventUnreadCount)
	assert.Equal(t, int64(7), unreadC.Data.(models.UnreadCountUpdate).UnreadCount,
		"each member gets its own count")

	_, ok = emitter.find(userA, models.EventMessageSent)
	assert.True(t, ok, "sender still gets the ack")
}

func TestSendGroupMessage_UnknownGroup(t *testing.T) {
	storageMock := new(MockStorage)
	router, _ := newRouter(storageMock)

	storageMock.On("FindGroupChatRoomByID", "group-1").Return(nil, notFoundErr("group"))

	err := router.SendGroupMessage(userA, models.GroupMessagePayload{
		GroupChatRoomID: "group-1",
		Message:         "anyone?",
	})
	var nf *chathub.NotFoundError
	assert.ErrorAs(t, err, &nf)
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestMarkRead_NotifiesCounterpartAndReader(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	storageMock.On("MarkMessagesRead", "room-1", userB).Return(nil)
	storageMock.On("CountUnread", "room-1", userB).Return(int64(0), nil)

	err := router.MarkRead(userB, models.MarkAsReadPayload{ChatRoomID: "room-1", GoSipID: userA})
	assert.NoError(t, err)

	readNotice, ok := emitter.find(userA, models.EventMessagesRead)
	assert.True(t, ok, "counterpart learns about the read")
	assert.Equal(t, userB, readNotice.Data.(models.MessagesReadNotice).ReadBy)

	unread, ok := emitter.find(userB, models.EventUnreadCount)
	assert.True(t, ok)
	assert.Equal(t, int64(0), unread.Data.(models.UnreadCountUpdate).UnreadCount,
		"reader's count drops to zero")
}

func TestMarkRead_WithoutCounterpart(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	storageMock.On("MarkMessagesRead", "room-1", userB).Return(nil)
	storageMock.On("CountUnread", "room-1", userB).Return(int64(0), nil)

	err := router.MarkRead(userB, models.MarkAsReadPayload{ChatRoomID: "room-1"})
	assert.NoError(t, err)

	for _, em := range emitter.all() {
		assert.NotEqual(t, models.EventMessagesRead, em.Event,
			"no counterpart, no read notice")
	}
}

func TestMarkGroupRead_NotifiesOtherMembers(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	room := &models.GroupChatRoom{
		GroupChatRoomID: "group-1",
		Members:         pq.StringArray{userA, userB, userC},
	}
	storageMock.On("FindGroupChatRoomByID", "group-1").Return(room, nil)
	storageMock.On("MarkMessagesRead", "group-1", userB).Return(nil)
	storageMock.On("CountUnread", "group-1", userB).Return(int64(0), nil)

	err := router.MarkGroupRead(userB, models.GroupRoomPayload{GroupChatRoomID: "group-1"})
	assert.NoError(t, err)

	_, ok := emitter.find(userA, models.EventMessagesRead)
	assert.True(t, ok)
	_, ok = emitter.find(userC, models.EventMessagesRead)
	assert.True(t, ok)
	_, ok = emitter.find(userB, models.EventMessagesRead)
	assert.False(t, ok, "the reader itself gets only the unread update")
}

func TestTyping_RelaysStartAndStop(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	err := router.Typing(userA, models.TypingPayload{To: userB, ChatRoomID: "room-1"}, false)
	assert.NoError(t, err)
	err = router.Typing(userA, models.TypingPayload{To: userB, ChatRoomID: "room-1"}, true)
	assert.NoError(t, err)

	start, ok := emitter.find(userB, models.EventTyping)
	assert.True(t, ok)
	assert.Equal(t, userA, start.Data.(models.TypingNotice).From)
	_, ok = emitter.find(userB, models.EventStopTyping)
	assert.True(t, ok)

	storageMock.AssertExpectations(t)
}

func TestGroupTyping_SkipsTypist(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	room := &models.GroupChatRoom{
		GroupChatRoomID: "group-1",
		Members:         pq.StringArray{userA, userB, userC},
	}
	storageMock.On("FindGroupChatRoomByID", "group-1").Return(room, nil)

	err := router.GroupTyping(userA, models.GroupRoomPayload{GroupChatRoomID: "group-1"}, false)
	assert.NoError(t, err)

	_, ok := emitter.find(userB, models.EventGroupTyping)
	assert.True(t, ok)
	_, ok = emitter.find(userC, models.EventGroupTyping)
	assert.True(t, ok)
	assert.Empty(t, emitter.eventsFor(userA))
}

func TestDeleteForSelf(t *testing.T) {
	storageMock := new(MockStorage)
	router, emitter := newRouter(storageMock)

	storageMock.On("SoftDeleteMessages", "room-1", userA).Return(nil)

	err := router.DeleteForSelf(userA, "room-1")
	assert.NoError(t, err)
	storageMock.AssertCalled(t, "SoftDeleteMessages", "room-1", userA)
	assert.Empty(t, emitter.all(), "a for-me delete is invisible to everyone else")

	var ve *chathub.ValidationError
	assert.ErrorAs(t, router.DeleteForSelf(userA, ""), &ve)
}
