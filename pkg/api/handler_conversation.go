package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/services"
)

// createConversationHandler handles POST /api/v1/conversations.
// The conversation is queued as pending; a worker claims and runs it.
func (s *Server) createConversationHandler(c *gin.Context) {
	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.UserID == "" {
		req.UserID = extractUser(c)
	}

	conv, err := s.conversations.CreateConversation(c.Request.Context(), req)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	s.logger.Info("conversation created",
		"conversation_id", conv.ID, "mode", conv.Mode, "user_id", conv.UserID)
	c.JSON(http.StatusCreated, models.ConversationResponse{Conversation: conv})
}

// listConversationsHandler handles GET /api/v1/conversations.
func (s *Server) listConversationsHandler(c *gin.Context) {
	status := c.Query("status")
	if status != "" {
		if err := conversation.StatusValidator(conversation.Status(status)); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid status: " + status})
			return
		}
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit: must be 1-200"})
			return
		}
		limit = n
	}

	convs, err := s.conversations.ListConversations(c.Request.Context(), status, limit)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ConversationsListResponse{Conversations: convs, Count: len(convs)})
}

// getConversationHandler handles GET /api/v1/conversations/:id.
// The latest workflow state is included once a snapshot exists, with
// credentials scrubbed.
func (s *Server) getConversationHandler(c *gin.Context) {
	id := c.Param("id")

	conv, err := s.conversations.GetConversation(c.Request.Context(), id)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	resp := ConversationDetailResponse{Conversation: conv}
	state, err := s.conversations.LatestState(c.Request.Context(), id)
	if err == nil {
		resp.State = s.masker.MaskState(state)
	} else if !errors.Is(err, services.ErrNotFound) {
		mapServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// cancelConversationHandler handles POST /api/v1/conversations/:id/cancel.
// A running conversation is cancelled cooperatively through its worker's
// context; queued and suspended ones are settled directly.
func (s *Server) cancelConversationHandler(c *gin.Context) {
	id := c.Param("id")

	conv, err := s.conversations.GetConversation(c.Request.Context(), id)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	switch conv.Status {
	case conversation.StatusCompleted, conversation.StatusFailed, conversation.StatusCancelled:
		c.JSON(http.StatusConflict, errorResponse{Error: "conversation is already in a terminal state"})
		return

	case conversation.StatusRunning:
		if s.pool != nil && s.pool.CancelConversation(id) {
			s.logger.Info("conversation cancellation requested", "conversation_id", id)
			c.JSON(http.StatusAccepted, CancelResponse{
				ConversationID: id,
				Message:        "cancellation requested, the worker stops at the next transition",
			})
			return
		}
		// Running on another replica: settle the row, the owning worker's
		// next status write observes the transition and stands down.
		fallthrough

	default: // pending, awaiting_user
		if err := s.conversations.UpdateStatus(c.Request.Context(), id, conversation.StatusCancelled); err != nil {
			mapServiceError(c, err)
			return
		}
		s.mux.Complete(id, "conversation cancelled")
		s.logger.Info("conversation cancelled", "conversation_id", id)
		c.JSON(http.StatusOK, CancelResponse{ConversationID: id, Message: "conversation cancelled"})
	}
}
