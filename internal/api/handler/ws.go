package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"travelbay/backend/internal/chathub"
	"travelbay/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection and registers it with the
// chat hub. Optional post_id/post_type query parameters scope the
// connection to one listing conversation, enabling presence events.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	id := callerIdentity(c)

	var post chathub.PostKey
	hasPost := false
	if postID := c.Query("post_id"); postID != "" {
		postType := models.PostType(c.Query("post_type"))
		if !postType.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "post_type must be one of trip, car, hotel, room"})
			return
		}
		post = chathub.PostKey{PostID: postID, PostType: postType}
		hasPost = true
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		UserID:   id.UserID,
		Role:     id.Role,
		AgencyID: id.AgencyID,
		Post:     post,
		HasPost:  hasPost,
		Conn:     conn,
		Hub:      h.Hub,
		Send:     make(chan models.Outbound, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
