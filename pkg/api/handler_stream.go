package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/events"
)

// streamHandler handles GET /api/v1/conversations/:id/stream.
//
// Server-sent events, one `workflow-update` event per workflow transition.
// Subscribing drains the conversation's replay buffer first, so events
// published before the client attached are not lost. A client that
// reconnects after a longer gap can pass ?since_id=<n> to replay from the
// persisted event log before going live.
func (s *Server) streamHandler(c *gin.Context) {
	id := c.Param("id")

	conv, err := s.conversations.GetConversation(c.Request.Context(), id)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	// Catchup from the persisted log, before the live subscription so the
	// order stays monotonic.
	if v := c.Query("since_id"); v != "" {
		sinceID, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			s.writeEvent(c, events.StreamEvent{
				ConversationID: id,
				Status:         events.StatusError,
				Message:        "invalid since_id",
			})
			return
		}
		stored, err := s.events.GetEventsSince(c.Request.Context(), id, sinceID, 0)
		if err != nil {
			s.logger.Warn("event catchup failed", "conversation_id", id, "error", err)
		}
		for _, ev := range stored {
			s.writeEvent(c, ev.Payload)
		}
	}

	s.writeEvent(c, events.StreamEvent{
		ConversationID: id,
		Status:         events.StatusConnected,
		Message:        "subscribed",
	})

	// A settled conversation has nothing live to stream; emit its terminal
	// status and end the stream.
	switch conv.Status {
	case conversation.StatusCompleted:
		s.writeEvent(c, events.StreamEvent{ConversationID: id, Status: events.StatusComplete, Message: "conversation completed"})
		return
	case conversation.StatusFailed:
		s.writeEvent(c, events.StreamEvent{ConversationID: id, Status: events.StatusError, Message: "conversation failed"})
		return
	case conversation.StatusCancelled:
		s.writeEvent(c, events.StreamEvent{ConversationID: id, Status: events.StatusComplete, Message: "conversation cancelled"})
		return
	}

	sub := s.mux.Subscribe(id)
	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			// Keep the buffer so a reconnect replays what it missed.
			s.mux.Unsubscribe(id, sub, true)
			return
		case ev, ok := <-sub.Events:
			if !ok {
				// Stream completed or another subscriber took over.
				return
			}
			s.writeEvent(c, ev)
			if ev.Status.Terminal() {
				s.mux.Unsubscribe(id, sub, false)
				return
			}
		}
	}
}

// writeEvent masks and writes one SSE frame, then flushes.
func (s *Server) writeEvent(c *gin.Context, ev events.StreamEvent) {
	ev.Message = s.masker.MaskText(ev.Message)
	ev.Content = s.masker.MaskText(ev.Content)

	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("failed to encode stream event", "conversation_id", ev.ConversationID, "error", err)
		return
	}
	fmt.Fprintf(c.Writer, "id: %s\nevent: workflow-update\ndata: %s\n\n", uuid.New().String(), data)
	c.Writer.Flush()
}
