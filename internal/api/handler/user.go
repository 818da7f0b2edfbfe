package handler

import (
	"log"
	"net/http"

	"gosip/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GetUser returns the caller's own record and resets the unread-notification
// counter, since fetching it means the notifications were seen.
func (h *Handler) GetUser(c *gin.Context) {
	claims := mustClaims(c)

	user, err := h.Storage.FindUserByGoSipID(claims.GoSipID)
	if err != nil {
		if notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User Not Found !"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Fetch User ! Server Error !"})
		return
	}

	if err := h.Storage.ResetUnreadNotifications(claims.GoSipID); err != nil {
		log.Printf("ERROR: Failed to reset notifications for %s: %v", claims.GoSipID, err)
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "success": true})
}

// GetFriendRequests expands the caller's pending-request set into requester
// summaries.
func (h *Handler) GetFriendRequests(c *gin.Context) {
	claims := mustClaims(c)

	user, err := h.Storage.FindUserByGoSipID(claims.GoSipID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Get Friend Requests ! Server Error !"})
		return
	}

	requesters := make([]models.UserSummary, 0, len(user.FriendRequests))
	for _, id := range user.FriendRequests {
		requester, err := h.Storage.FindUserByGoSipID(id)
		if err != nil {
			log.Printf("ERROR: Failed to load requester %s: %v", id, err)
			continue
		}
		requesters = append(requesters, requester.Summary())
	}

	c.JSON(http.StatusOK, gin.H{"users": requesters})
}

// RejectFriendRequest drops a requester from the caller's pending set.
// Rejecting a request that is no longer pending succeeds silently.
func (h *Handler) RejectFriendRequest(c *gin.Context) {
	claims := mustClaims(c)

	var req struct {
		GoSipID string `json:"GoSipID"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.GoSipID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "GoSipID is required !"})
		return
	}

	err := h.Hub.Relationships.RejectRequest(claims.GoSipID, models.FriendRequestPayload{GoSipID: req.GoSipID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot Reject Request ! Server Error !"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
