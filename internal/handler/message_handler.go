package handler

import (
	"errors"
	"fmt"
	"net/http"

	"Medilink/internal/attachment"
	"Medilink/internal/auth"
	"Medilink/internal/model"
	"Medilink/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler interface {
	Send(c *gin.Context)
	History(c *gin.Context)
	Conversations(c *gin.Context)
	DownloadAttachment(c *gin.Context)
}

type messageHandler struct {
	service service.MessageService
}

func NewMessageHandler(service service.MessageService) MessageHandler {
	return &messageHandler{
		service: service,
	}
}

// Send is the durable path. The client calls this first and only mirrors the
// message over the socket after a success response, so a failure here means
// the message never appears delivered anywhere.
func (h *messageHandler) Send(c *gin.Context) {
	var msg model.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid message payload"})
		return
	}

	if msg.Sender != auth.Identity(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Sender must match the authenticated user"})
		return
	}

	if err := h.service.Send(c.Request.Context(), &msg); err != nil {
		switch {
		case errors.Is(err, attachment.ErrUnsupportedType),
			errors.Is(err, attachment.ErrTooLarge),
			errors.Is(err, attachment.ErrCorruptPayload),
			errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
	})
}

// History returns the conversation for ?sender=&receiver= sorted ascending by
// timestamp. The two parameters are interchangeable.
func (h *messageHandler) History(c *gin.Context) {
	a := c.Query("sender")
	b := c.Query("receiver")
	if a == "" || b == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "sender and receiver are required"})
		return
	}

	messages, err := h.service.History(c.Request.Context(), auth.Identity(c), a, b)
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not a participant of this conversation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
	})
}

// Conversations lists one preview per counterpart for the chat-list page.
func (h *messageHandler) Conversations(c *gin.Context) {
	previews, err := h.service.Conversations(c.Request.Context(), auth.Identity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"conversations": previews,
	})
}

// DownloadAttachment streams a stored attachment back as a file.
func (h *messageHandler) DownloadAttachment(c *gin.Context) {
	file, err := h.service.Attachment(c.Request.Context(), auth.Identity(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Attachment not found"})
		case errors.Is(err, service.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not a participant of this conversation"})
		case errors.Is(err, service.ErrInvalidAttachmentRef):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid attachment reference"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch attachment"})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.MIME, file.Data)
}
