package handler

import (
	"errors"
	"log"
	"net/http"

	"gosip/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// chatSummary is one row of the chat list: the room, the friend on the other
// side, and the caller's live unread count.
type chatSummary struct {
	ChatRoomID  string `json:"chatRoomID"`
	Friend      friend `json:"friend"`
	UnreadCount int64  `json:"unreadCount"`
}

type friend struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
	GoSipID    string `json:"GoSipID"`
	IsOnline   bool   `json:"isOnline,omitempty"`
}

// GetChats returns the caller's 1:1 rooms, most recently active first, each
// enriched with the counterpart's summary and a live unread count. This is
// the reconciliation read an offline peer catches up with after reconnecting.
func (h *Handler) GetChats(c *gin.Context) {
	claims := mustClaims(c)

	rooms, err := h.Storage.FindChatRoomsForMember(claims.GoSipID)
	if err != nil {
		log.Printf("ERROR: Failed to fetch chat rooms for %s: %v", claims.GoSipID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Fetch Chat Rooms ! Server Error !"})
		return
	}

	enriched := make([]chatSummary, 0, len(rooms))
	for _, room := range rooms {
		friendID := counterpart(room.Members, claims.GoSipID)
		friendUser, err := h.Storage.FindUserByGoSipID(friendID)
		if err != nil {
			log.Printf("ERROR: Failed to load friend %s: %v", friendID, err)
			continue
		}
		unread, err := h.Storage.CountUnread(room.ChatRoomID, claims.GoSipID)
		if err != nil {
			log.Printf("ERROR: Failed to count unread in %s: %v", room.ChatRoomID, err)
			continue
		}
		enriched = append(enriched, chatSummary{
			ChatRoomID: room.ChatRoomID,
			Friend: friend{
				Name:       friendUser.Name,
				ProfilePic: friendUser.ProfilePic,
				GoSipID:    friendUser.GoSipID,
			},
			UnreadCount: unread,
		})
	}

	c.JSON(http.StatusOK, enriched)
}

// GetChatMessages returns the room's messages (minus those the caller
// soft-deleted) and the counterpart's info. The caller must be a member.
func (h *Handler) GetChatMessages(c *gin.Context) {
	claims := mustClaims(c)

	var req struct {
		ChatRoomID string `json:"chatRoomID"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatRoomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat Room ID Is Required !"})
		return
	}

	room, err := h.Storage.FindChatRoomByID(req.ChatRoomID)
	if err != nil || !contains(room.Members, claims.GoSipID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No Chat Found !"})
		return
	}

	friendID := counterpart(room.Members, claims.GoSipID)
	friendUser, err := h.Storage.FindUserByGoSipID(friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Fetch Messages ! Server Error !"})
		return
	}
	messages, err := h.Storage.MessagesForRoom(req.ChatRoomID, claims.GoSipID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Fetch Messages ! Server Error !"})
		return
	}

	_, isOnline := h.Hub.Registry.Resolve(friendID)

	c.JSON(http.StatusOK, gin.H{
		"friend": friend{
			Name:       friendUser.Name,
			GoSipID:    friendUser.GoSipID,
			ProfilePic: friendUser.ProfilePic,
			IsOnline:   isOnline,
		},
		"messages": messages,
	})
}

// DeleteChatMessagesForMe soft-deletes every message in the room for the
// caller only. Other members keep their view; nobody is notified.
func (h *Handler) DeleteChatMessagesForMe(c *gin.Context) {
	claims := mustClaims(c)

	var req struct {
		ChatRoomID string `json:"chatRoomID"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatRoomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat Room ID is required !"})
		return
	}

	if err := h.Hub.Router.DeleteForSelf(claims.GoSipID, req.ChatRoomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Delete Messages ! Server Error !"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func counterpart(members []string, self string) string {
	for _, id := range members {
		if id != self {
			return id
		}
	}
	return ""
}

func contains(members []string, id string) bool {
	for _, m := range members {
		if m == id {
			return true
		}
	}
	return false
}

// notFound reports whether the error is a missing-record error rather than a
// storage failure.
func notFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
