package chathub

import (
	"errors"
	"log"

	"gosip/backend/internal/models"
	"gosip/backend/internal/storage"
)

// RelationshipCoordinator drives the friend-request lifecycle:
// none -> requested -> accepted (friends) or rejected (none), and
// friends -> removed (none). Accepting creates exactly one 1:1 room per
// friendship; removing deletes it together with its messages.
//
// Set-level operations are idempotent: removing an absent member or
// re-sending a pending request succeeds silently.
type RelationshipCoordinator struct {
	Storage  storage.Storage
	Registry *Registry
	Emitter  Emitter
}

// NewRelationshipCoordinator constructor.
func NewRelationshipCoordinator(s storage.Storage, reg *Registry, e Emitter) *RelationshipCoordinator {
	return &RelationshipCoordinator{Storage: s, Registry: reg, Emitter: e}
}

// SendFriendRequest adds the sender to the target's pending set, bumps their
// notification counter, and notifies them if reachable. A request that is
// already pending is a silent success and does not bump the counter again.
func (rc *RelationshipCoordinator) SendFriendRequest(from string, p models.FriendRequestPayload) error {
	if p.GoSipID == "" {
		return invalid("GoSipID is required")
	}
	if p.GoSipID == from {
		return invalid("cannot send a friend request to yourself")
	}

	target, err := rc.Storage.FindUserByGoSipID(p.GoSipID)
	if err != nil {
		return wrapStorage("find user", err)
	}
	sender, err := rc.Storage.FindUserByGoSipID(from)
	if err != nil {
		return wrapStorage("find user", err)
	}

	applied, err := rc.Storage.AddFriendRequest(target.GoSipID, from)
	if err != nil {
		return &PersistenceError{Op: "add friend request", Err: err}
	}
	if applied {
		rc.Emitter.Emit(target.GoSipID, models.EventFriendReqReceived, models.FriendRequestNotice{
			From: sender.Summary(),
		})
	}
	return nil
}

// AcceptRequest removes the requester from the accepter's pending set, makes
// the two users mutual friends, and ensures exactly one chat room exists for
// the pair. Both sides are notified with the new room and an unread count of
// zero. Accepting twice reuses the existing room instead of creating another.
func (rc *RelationshipCoordinator) AcceptRequest(accepter string, p models.FriendRequestPayload) error {
	if p.GoSipID == "" {
		return invalid("GoSipID is required")
	}

	requester, err := rc.Storage.FindUserByGoSipID(p.GoSipID)
	if err != nil {
		return wrapStorage("find user", err)
	}
	accepterUser, err := rc.Storage.FindUserByGoSipID(accepter)
	if err != nil {
		return wrapStorage("find user", err)
	}

	if err := rc.Storage.PullFriendRequest(accepter, requester.GoSipID); err != nil {
		return &PersistenceError{Op: "pull friend request", Err: err}
	}
	if err := rc.Storage.AddFriend(accepter, requester.GoSipID); err != nil {
		return &PersistenceError{Op: "add friend", Err: err}
	}

	room, err := rc.Storage.FindChatRoomByMembers(accepter, requester.GoSipID)
	if errors.Is(err, storage.ErrNotFound) {
		room, err = rc.Storage.CreateChatRoom([]string{accepter, requester.GoSipID})
	}
	if err != nil {
		return &PersistenceError{Op: "create chat room", Err: err}
	}

	_, requesterOnline := rc.Registry.Resolve(requester.GoSipID)
	_, accepterOnline := rc.Registry.Resolve(accepter)

	rc.Emitter.Emit(accepter, models.EventAcceptedRequest, models.AcceptedRequestNotice{
		ChatRoomID:  room.ChatRoomID,
		Friend:      requester.Summary(),
		IsOnline:    requesterOnline,
		UnreadCount: 0,
	})
	rc.Emitter.Emit(requester.GoSipID, models.EventAcceptedRequest, models.AcceptedRequestNotice{
		ChatRoomID:  room.ChatRoomID,
		Friend:      accepterUser.Summary(),
		IsOnline:    accepterOnline,
		UnreadCount: 0,
	})
	return nil
}

// RejectRequest removes the requester from the owner's pending set. No
// notification is sent; rejecting an absent request succeeds silently.
func (rc *RelationshipCoordinator) RejectRequest(owner string, p models.FriendRequestPayload) error {
	if p.GoSipID == "" {
		return invalid("GoSipID is required")
	}
	if err := rc.Storage.PullFriendRequest(owner, p.GoSipID); err != nil {
		return &PersistenceError{Op: "pull friend request", Err: err}
	}
	return nil
}

// RemoveFriend dissolves the friendship, deletes the named room with all its
// messages, and notifies both sides.
func (rc *RelationshipCoordinator) RemoveFriend(actor string, p models.RemoveFriendPayload) error {
	if p.GoSipID == "" || p.ChatRoomID == "" {
		return invalid("GoSipID and chatRoomID are required")
	}

	if err := rc.Storage.RemoveFriend(actor, p.GoSipID); err != nil {
		return &PersistenceError{Op: "remove friend", Err: err}
	}
	if err := rc.Storage.DeleteChatRoom(p.ChatRoomID); err != nil {
		// Friendship is already dissolved; an orphaned room would violate the
		// cascade, so surface this one.
		return &PersistenceError{Op: "delete chat room", Err: err}
	}
	log.Printf("Friendship removed between %s and %s, room %s deleted", actor, p.GoSipID, p.ChatRoomID)

	rc.Emitter.Emit(p.GoSipID, models.EventRemovedFriend, models.RemovedFriendNotice{
		GoSipID:    actor,
		ChatRoomID: p.ChatRoomID,
	})
	rc.Emitter.Emit(actor, models.EventRemovedFriend, models.RemovedFriendNotice{
		GoSipID:    p.GoSipID,
		ChatRoomID: p.ChatRoomID,
	})
	return nil
}
