package models

import "encoding/json"

// Client-to-server event names.
const (
	EventJoin             = "join"
	EventSendMessage      = "sendMessage"
	EventMarkAsRead       = "markAsRead"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventSendFriendReq    = "sendFriendRequest"
	EventAcceptRequest    = "acceptRequest"
	EventRemoveFriend     = "removeFriend"
	EventCreateGroup      = "createGroup"
	EventChangeGroupName  = "changeGroupName"
	EventChangeGroupPic   = "changeGroupAvatar"
	EventAddMembers       = "addMembers"
	EventLeaveGroup       = "leaveGroup"
	EventLeaveGroupAdmin  = "leaveGroupAdmin"
	EventDeleteGroup      = "deleteGroup"
	EventSendGroupMessage = "sendGroupMessage"
	EventGroupMarkAsRead  = "groupMessagesMarkAsRead"
	EventGroupTyping      = "groupTyping"
	EventGroupStopTyping  = "groupStopTyping"
)

// Server-to-client event names.
const (
	EventOnlineFriendsList = "onlineFriendsList"
	EventUserOnline        = "userOnline"
	EventUserOffline       = "userOffline"
	EventReceiveMessage    = "receiveMessage"
	EventMessageSent       = "messageSent"
	EventUnreadCount       = "unreadCountUpdate"
	EventMessagesRead      = "messagesRead"
	EventFriendReqReceived = "friendRequestReceived"
	EventAcceptedRequest   = "acceptedRequest"
	EventRemovedFriend     = "removedFriend"
	EventGroupCreated      = "groupCreated"
	EventGroupUpdated      = "groupUpdated"
	EventMembersAdded      = "membersAdded"
	EventLeftGroup         = "leftGroup"
	EventAdminLeftGroup    = "adminLeftGroup"
	EventGroupDeleted      = "groupDeleted"
	EventActionFailed      = "actionFailed"
)

// ClientEvent is the envelope a client sends over its websocket. Data is left
// raw so the dispatcher can decode it into the payload type the event expects.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerEvent is the envelope delivered to clients.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Inbound payloads.

type SendMessagePayload struct {
	To         string `json:"to"`
	Message    string `json:"message"`
	ChatRoomID string `json:"chatRoomID"`
}

type MarkAsReadPayload struct {
	ChatRoomID string `json:"chatRoomID"`
	GoSipID    string `json:"GoSipID"` // the counterpart to notify
}

type TypingPayload struct {
	To         string `json:"to"`
	ChatRoomID string `json:"chatRoomID"`
}

type FriendRequestPayload struct {
	GoSipID string `json:"GoSipID"`
}

type RemoveFriendPayload struct {
	GoSipID    string `json:"GoSipID"`
	ChatRoomID string `json:"chatRoomID"`
}

type CreateGroupPayload struct {
	GroupName   string   `json:"groupName"`
	GroupAvatar string   `json:"groupAvatar"`
	Members     []string `json:"members"` // excluding the creator
}

type GroupNamePayload struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
	GroupName       string `json:"groupName"`
}

type GroupAvatarPayload struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
	GroupAvatar     string `json:"groupAvatar"`
}

type AddMembersPayload struct {
	GroupChatRoomID string   `json:"groupChatRoomID"`
	Members         []string `json:"members"`
}

type GroupRoomPayload struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
}

type LeaveGroupAdminPayload struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
	NewAdmin        string `json:"newAdmin"`
}

type GroupMessagePayload struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
	Message         string `json:"message"`
}

// Outbound payloads.

type MessageDelivery struct {
	ChatRoomID string  `json:"chatRoomID"`
	Message    Message `json:"message"`
}

type UnreadCountUpdate struct {
	ChatRoomID  string `json:"chatRoomID"`
	UnreadCount int64  `json:"unreadCount"`
}

type MessagesReadNotice struct {
	ChatRoomID string `json:"chatRoomID"`
	ReadBy     string `json:"readBy"`
}

type TypingNotice struct {
	ChatRoomID string `json:"chatRoomID"`
	From       string `json:"from"`
}

type PresenceNotice struct {
	GoSipID string `json:"GoSipID"`
}

type FriendRequestNotice struct {
	From UserSummary `json:"from"`
}

type AcceptedRequestNotice struct {
	ChatRoomID  string      `json:"chatRoomID"`
	Friend      UserSummary `json:"friend"`
	IsOnline    bool        `json:"isOnline"`
	UnreadCount int64       `json:"unreadCount"`
}

type RemovedFriendNotice struct {
	GoSipID    string `json:"GoSipID"`
	ChatRoomID string `json:"chatRoomID"`
}

type GroupSummary struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
	GroupName       string `json:"groupName"`
	GroupAvatar     string `json:"groupAvatar"`
	Admin           string `json:"admin"`
	UnreadCount     int64  `json:"unreadCount"`
}

type MembersAddedNotice struct {
	GroupChatRoomID string   `json:"groupChatRoomID"`
	Members         []string `json:"members"`
}

type LeftGroupNotice struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
	GoSipID         string `json:"GoSipID"`
	NewAdmin        string `json:"newAdmin,omitempty"`
}

type GroupDeletedNotice struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
}

type ActionFailedNotice struct {
	Event string `json:"event"`
	Error string `json:"error"`
}
