package handler

import (
	"log"
	"net/http"

	"gosip/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type groupChatSummary struct {
	GroupChatRoomID string `json:"groupChatRoomID"`
	GroupName       string `json:"groupName"`
	GroupAvatar     string `json:"groupAvatar"`
	UnreadCount     int64  `json:"unreadCount"`
}

// GetGroupChats returns the caller's group rooms with live unread counts,
// most recently active first.
func (h *Handler) GetGroupChats(c *gin.Context) {
	claims := mustClaims(c)

	rooms, err := h.Storage.FindGroupChatRoomsForMember(claims.GoSipID)
	if err != nil {
		log.Printf("ERROR: Failed to fetch group rooms for %s: %v", claims.GoSipID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Fetch Group Chat Rooms ! Server Error !"})
		return
	}

	enriched := make([]groupChatSummary, 0, len(rooms))
	for _, room := range rooms {
		unread, err := h.Storage.CountUnread(room.GroupChatRoomID, claims.GoSipID)
		if err != nil {
			log.Printf("ERROR: Failed to count unread in group %s: %v", room.GroupChatRoomID, err)
			continue
		}
		enriched = append(enriched, groupChatSummary{
			GroupChatRoomID: room.GroupChatRoomID,
			GroupName:       room.GroupName,
			GroupAvatar:     room.GroupAvatar,
			UnreadCount:     unread,
		})
	}

	c.JSON(http.StatusOK, gin.H{"groupChatRooms": enriched})
}

// GetGroupChatMessages returns the group's messages (minus those the caller
// soft-deleted), the member roster with display info, and the group record.
func (h *Handler) GetGroupChatMessages(c *gin.Context) {
	claims := mustClaims(c)

	var req struct {
		GroupChatRoomID string `json:"groupChatRoomID"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.GroupChatRoomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group Chat ID Is Required !"})
		return
	}

	room, err := h.Storage.FindGroupChatRoomByID(req.GroupChatRoomID)
	if err != nil {
		if notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No Group Chat Found !"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Fetch Group Chat Messages ! Server Error !"})
		return
	}

	messages, err := h.Storage.MessagesForRoom(req.GroupChatRoomID, claims.GoSipID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Fetch Group Chat Messages ! Server Error !"})
		return
	}

	users := make([]models.UserSummary, 0, len(room.Members))
	for _, memberID := range room.Members {
		member, err := h.Storage.FindUserByGoSipID(memberID)
		if err != nil {
			log.Printf("ERROR: Failed to load group member %s: %v", memberID, err)
			continue
		}
		users = append(users, member.Summary())
	}

	c.JSON(http.StatusOK, gin.H{
		"groupName":   room.GroupName,
		"groupAvatar": room.GroupAvatar,
		"groupAdmin":  room.Admin,
		"messages":    messages,
		"users":       users,
	})
}

// DeleteGroupChatMessagesForMe soft-deletes every group message for the
// caller only.
func (h *Handler) DeleteGroupChatMessagesForMe(c *gin.Context) {
	claims := mustClaims(c)

	var req struct {
		GroupChatRoomID string `json:"groupChatRoomID"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.GroupChatRoomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group Chat Room ID is required !"})
		return
	}

	if err := h.Hub.Router.DeleteForSelf(claims.GoSipID, req.GroupChatRoomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Delete Messages ! Server Error !"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
