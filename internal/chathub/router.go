package chathub

import (
	"log"

	"gosip/backend/internal/models"
	"gosip/backend/internal/storage"
)

// MessageRouter persists and fans out direct and group chat messages, typing
// indicators, read receipts and unread-count updates. Unread counts are
// always live-counted against the persisted read-sets, never cached.
type MessageRouter struct {
	Storage storage.Storage
	Emitter Emitter
}

// NewMessageRouter constructor.
func NewMessageRouter(s storage.Storage, e Emitter) *MessageRouter {
	return &MessageRouter{Storage: s, Emitter: e}
}

// SendDirectMessage persists the message with read-set {sender}, touches the
// room's last-activity timestamp, delivers the payload plus a recomputed
// unread count to the recipient, and unconditionally acknowledges the sender.
func (r *MessageRouter) SendDirectMessage(sender string, p models.SendMessagePayload) error {
	if p.To == "" || p.ChatRoomID == "" {
		return invalid("to and chatRoomID are required")
	}
	if p.Message == "" {
		return invalid("message text is required")
	}

	msg := &models.Message{
		ChatRoomID:    p.ChatRoomID,
		SenderGoSipID: sender,
		Text:          p.Message,
	}
	if err := r.Storage.SaveMessage(msg); err != nil {
		return &PersistenceError{Op: "save message", Err: err}
	}
	if err := r.Storage.TouchChatRoom(p.ChatRoomID); err != nil {
		// The message is already persisted; a stale timestamp only affects
		// room ordering, so don't fail the send over it.
		log.Printf("ERROR: Failed to touch room %s: %v", p.ChatRoomID, err)
	}

	delivery := models.MessageDelivery{ChatRoomID: p.ChatRoomID, Message: *msg}
	r.Emitter.Emit(p.To, models.EventReceiveMessage, delivery)
	r.notifyUnread(p.To, p.ChatRoomID)

	r.Emitter.Emit(sender, models.EventMessageSent, delivery)
	return nil
}

// SendGroupMessage persists the message and fans it out to every other
// current member, each with its own individually recomputed unread count.
func (r *MessageRouter) SendGroupMessage(sender string, p models.GroupMessagePayload) error {
	if p.GroupChatRoomID == "" {
		return invalid("groupChatRoomID is required")
	}
	if p.Message == "" {
		return invalid("message text is required")
	}

	room, err := r.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}

	msg := &models.Message{
		ChatRoomID:    p.GroupChatRoomID,
		SenderGoSipID: sender,
		Text:          p.Message,
	}
	if err := r.Storage.SaveMessage(msg); err != nil {
		return &PersistenceError{Op: "save message", Err: err}
	}
	if err := r.Storage.TouchGroupChatRoom(p.GroupChatRoomID); err != nil {
		log.Printf("ERROR: Failed to touch group %s: %v", p.GroupChatRoomID, err)
	}

	delivery := models.MessageDelivery{ChatRoomID: p.GroupChatRoomID, Message: *msg}
	for _, member := range room.Members {
		if member == sender {
			continue
		}
		r.Emitter.Emit(member, models.EventReceiveMessage, delivery)
		r.notifyUnread(member, p.GroupChatRoomID)
	}

	r.Emitter.Emit(sender, models.EventMessageSent, delivery)
	return nil
}

// MarkRead atomically adds the reader to the read-set of every message in the
// direct room, notifies the counterpart that a read happened, and pushes the
// reader's now-current unread count back to them.
func (r *MessageRouter) MarkRead(reader string, p models.MarkAsReadPayload) error {
	if p.ChatRoomID == "" {
		return invalid("chatRoomID is required")
	}
	if err := r.Storage.MarkMessagesRead(p.ChatRoomID, reader); err != nil {
		return &PersistenceError{Op: "mark messages read", Err: err}
	}

	if p.GoSipID != "" {
		r.Emitter.Emit(p.GoSipID, models.EventMessagesRead, models.MessagesReadNotice{
			ChatRoomID: p.ChatRoomID,
			ReadBy:     reader,
		})
	}
	r.notifyUnread(reader, p.ChatRoomID)
	return nil
}

// MarkGroupRead is MarkRead for group rooms: every other member learns about
// the read event.
func (r *MessageRouter) MarkGroupRead(reader string, p models.GroupRoomPayload) error {
	if p.GroupChatRoomID == "" {
		return invalid("groupChatRoomID is required")
	}
	room, err := r.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}
	if err := r.Storage.MarkMessagesRead(p.GroupChatRoomID, reader); err != nil {
		return &PersistenceError{Op: "mark messages read", Err: err}
	}

	notice := models.MessagesReadNotice{ChatRoomID: p.GroupChatRoomID, ReadBy: reader}
	for _, member := range room.Members {
		if member == reader {
			continue
		}
		r.Emitter.Emit(member, models.EventMessagesRead, notice)
	}
	r.notifyUnread(reader, p.GroupChatRoomID)
	return nil
}

// Typing relays a transient typing indicator to the counterpart. Nothing is
// persisted; there is no retry and no ordering guarantee relative to message
// delivery.
func (r *MessageRouter) Typing(from string, p models.TypingPayload, stop bool) error {
	if p.To == "" || p.ChatRoomID == "" {
		return invalid("to and chatRoomID are required")
	}
	event := models.EventTyping
	if stop {
		event = models.EventStopTyping
	}
	r.Emitter.Emit(p.To, event, models.TypingNotice{ChatRoomID: p.ChatRoomID, From: from})
	return nil
}

// GroupTyping relays a transient typing indicator to every other member.
func (r *MessageRouter) GroupTyping(from string, p models.GroupRoomPayload, stop bool) error {
	if p.GroupChatRoomID == "" {
		return invalid("groupChatRoomID is required")
	}
	room, err := r.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}
	event := models.EventGroupTyping
	if stop {
		event = models.EventGroupStopTyping
	}
	notice := models.TypingNotice{ChatRoomID: p.GroupChatRoomID, From: from}
	for _, member := range room.Members {
		if member == from {
			continue
		}
		r.Emitter.Emit(member, event, notice)
	}
	return nil
}

// DeleteForSelf appends the identity to the soft-delete set of every message
// in the room. The room stays, other members' views are untouched and nobody
// is notified.
func (r *MessageRouter) DeleteForSelf(goSipID, chatRoomID string) error {
	if chatRoomID == "" {
		return invalid("chatRoomID is required")
	}
	if err := r.Storage.SoftDeleteMessages(chatRoomID, goSipID); err != nil {
		return &PersistenceError{Op: "soft delete messages", Err: err}
	}
	return nil
}

// notifyUnread recomputes and pushes a recipient's unread count for a room.
// This runs after the primary write, so failures are logged and the peer is
// left with a stale view until its next reconciliation read.
func (r *MessageRouter) notifyUnread(goSipID, chatRoomID string) {
	count, err := r.Storage.CountUnread(chatRoomID, goSipID)
	if err != nil {
		log.Printf("ERROR: Failed to count unread for %s in room %s: %v", goSipID, chatRoomID, err)
		return
	}
	r.Emitter.Emit(goSipID, models.EventUnreadCount, models.UnreadCountUpdate{
		ChatRoomID:  chatRoomID,
		UnreadCount: count,
	})
}
