// Package events is the per-conversation stream multiplexer: it fans
// workflow progress out to the SSE transport, buffering for late joiners.
package events

// StreamStatus is the coarse state carried by every stream event.
type StreamStatus string

const (
	StatusConnected StreamStatus = "CONNECTED"
	StatusRunning   StreamStatus = "RUNNING"
	StatusThinking  StreamStatus = "THINKING"
	StatusTool      StreamStatus = "TOOL"
	StatusPartial   StreamStatus = "PARTIAL"
	StatusComplete  StreamStatus = "COMPLETE"
	StatusError     StreamStatus = "ERROR"
)

// Terminal reports whether the status ends the stream.
func (s StreamStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// StreamEvent is the payload written to the SSE stream, one per
// workflow-update. Optional fields are omitted when empty.
type StreamEvent struct {
	ConversationID string       `json:"conversationId"`
	Status         StreamStatus `json:"status"`
	Agent          string       `json:"agent,omitempty"`
	Message        string       `json:"message"`
	Tool           string       `json:"tool,omitempty"`
	Content        string       `json:"content,omitempty"`
	Progress       *float64     `json:"progress,omitempty"`
}
