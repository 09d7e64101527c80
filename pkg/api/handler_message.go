package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/models"
)

// maxMessageLength bounds a single user message.
const maxMessageLength = 100_000

// postMessageHandler handles POST /api/v1/conversations/:id/messages.
// For a suspended conversation the message answers the pending question and
// the conversation is re-queued; for a queued or running one it lands in the
// transcript and reaches the agents at the next workflow slice.
func (s *Server) postMessageHandler(c *gin.Context) {
	id := c.Param("id")

	var req models.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}
	if len(req.Content) > maxMessageLength {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "content exceeds maximum length of 100,000 characters"})
		return
	}

	conv, err := s.conversations.GetConversation(c.Request.Context(), id)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	switch conv.Status {
	case conversation.StatusCompleted, conversation.StatusFailed, conversation.StatusCancelled:
		c.JSON(http.StatusConflict, errorResponse{Error: "conversation is in a terminal state"})
		return
	}

	msg, err := s.messages.AppendMessage(c.Request.Context(), id, models.RoleUser, "", req.Content)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	status := string(conv.Status)
	if conv.Status == conversation.StatusAwaitingUser {
		if err := s.conversations.Requeue(c.Request.Context(), id); err != nil {
			mapServiceError(c, err)
			return
		}
		status = string(conversation.StatusPending)
		s.logger.Info("conversation resumed", "conversation_id", id)
	}

	c.JSON(http.StatusAccepted, MessageResponse{
		ConversationID: id,
		MessageID:      msg.ID,
		Sequence:       msg.Sequence,
		Status:         status,
	})
}
