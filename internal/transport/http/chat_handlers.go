package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatapp/chatapp-server/internal/chat"
	"github.com/chatapp/chatapp-server/internal/store"
)

// ChatHandlers provides HTTP handlers for the room chat endpoints.
type ChatHandlers struct {
	svc *chat.Service
	log *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(svc *chat.Service, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		svc: svc,
		log: logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RenameResponse represents a successful rename response body.
type RenameResponse struct {
	Message         string `json:"message"`
	OldUsername     string `json:"old_username"`
	NewUsername     string `json:"new_username"`
	MessagesUpdated int64  `json:"messages_updated"`
}

// PostMessage handles posting a new message to a room.
// POST /api/chat/:room (form fields: username, msg)
func (h *ChatHandlers) PostMessage(c *gin.Context) {
	room := c.Param("room")
	username := c.PostForm("username")
	message := c.PostForm("msg")

	msg, err := h.svc.Post(c.Request.Context(), room, username, message)
	if err != nil {
		if errors.Is(err, chat.ErrMissingFields) {
			h.log.Warn().Str("room", room).Str("username", username).
				Bool("has_message", message != "").
				Msg("message post failed, missing required fields")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Username and message are required"})
			return
		}
		h.log.Error().Err(err).Str("room", room).Str("username", username).
			Msg("failed to save message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save message"})
		return
	}

	h.log.Info().Str("room", room).Str("username", username).
		Int("message_length", len(message)).Int64("message_id", msg.ID).
		Msg("new message posted")
	c.JSON(http.StatusCreated, msg)
}

// GetTranscript handles reading a room's message history as plain text.
// GET /api/chat/:room
func (h *ChatHandlers) GetTranscript(c *gin.Context) {
	room := c.Param("room")

	transcript, err := h.svc.Transcript(c.Request.Context(), room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to retrieve messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve messages"})
		return
	}

	h.log.Info().Str("room", room).Msg("retrieved messages for room")
	c.String(http.StatusOK, transcript)
}

// RenameUser handles renaming an author across a room's messages.
// PUT /api/chat/:room (form fields: old_username, new_username)
func (h *ChatHandlers) RenameUser(c *gin.Context) {
	room := c.Param("room")
	oldUsername := c.PostForm("old_username")
	newUsername := c.PostForm("new_username")

	updated, err := h.svc.Rename(c.Request.Context(), room, oldUsername, newUsername)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrMissingUsernames):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Both old_username and new_username are required"})
		case errors.Is(err, chat.ErrSameUsername):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "New username must be different from current username"})
		case errors.Is(err, store.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Username already exists in this room"})
		case errors.Is(err, store.ErrNoMessages):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No messages found for this username in this room"})
		default:
			h.log.Error().Err(err).Str("room", room).
				Str("old_username", oldUsername).Str("new_username", newUsername).
				Msg("username update failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update username"})
			return
		}
		h.log.Warn().Err(err).Str("room", room).
			Str("old_username", oldUsername).Str("new_username", newUsername).
			Msg("username update rejected")
		return
	}

	h.log.Info().Str("room", room).
		Str("old_username", oldUsername).Str("new_username", newUsername).
		Int64("messages_updated", updated).
		Msg("username updated")
	c.JSON(http.StatusOK, RenameResponse{
		Message:         fmt.Sprintf("Username updated successfully. %d messages updated.", updated),
		OldUsername:     oldUsername,
		NewUsername:     newUsername,
		MessagesUpdated: updated,
	})
}

// ClearRoom handles deleting a room's entire message history.
// DELETE /api/chat/:room
func (h *ChatHandlers) ClearRoom(c *gin.Context) {
	room := c.Param("room")

	deleted, err := h.svc.Clear(c.Request.Context(), room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to clear chat history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete chat history"})
		return
	}

	h.log.Info().Str("room", room).Int64("messages_deleted", deleted).Msg("chat history cleared")
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Chat history deleted. %d messages removed.", deleted),
	})
}
