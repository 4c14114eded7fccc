package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbay/backend/internal/models"
)

// GetConversations lists the caller's conversations with unread counts.
func (h *Handler) GetConversations(c *gin.Context) {
	id := callerIdentity(c)

	conversations, err := h.Storage.GetConversations(id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetChatHistory returns the ordered message history for one post
// conversation the caller takes part in. Results are consistent with any
// concurrently connected live session: the store is the single source of truth.
func (h *Handler) GetChatHistory(c *gin.Context) {
	id := callerIdentity(c)

	postID := c.Query("post_id")
	postType := models.PostType(c.Query("post_type"))
	if postID == "" || !postType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post_id and a valid post_type are required"})
		return
	}

	history, err := h.Storage.GetChatHistory(postID, postType, id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

type markReadRequest struct {
	PostID   string          `json:"postId" binding:"required"`
	PostType models.PostType `json:"postType" binding:"required"`
}

// MarkRead marks all messages addressed to the caller in the conversation
// as read. It goes through the dispatcher so a connected counterpart also
// receives the read receipt, mirroring the websocket path.
func (h *Handler) MarkRead(c *gin.Context) {
	id := callerIdentity(c)

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.PostType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postType must be one of trip, car, hotel, room"})
		return
	}

	updated, err := h.Hub.Dispatcher.MarkRead(req.PostID, req.PostType, id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update read state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
