package handler

import (
	"errors"
	"net/http"

	"gosip/backend/internal/chathub"
	"gosip/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client runs on a different origin; cookie auth is what
	// actually gates the connection.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection to a websocket. The auth gate
// runs first: a connection with no cookie or a bad token is refused with a
// distinguishable reason before a single event can be sent.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	claims, err := h.claimsFromRequest(c)
	if err != nil {
		status := http.StatusForbidden
		if errors.Is(err, errNoCredentials) {
			status = http.StatusUnauthorized
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		Hub:     h.Hub,
		GoSipID: claims.GoSipID,
		Conn:    conn,
		Send:    make(chan models.ServerEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
