package models

import "github.com/patchwright/patchwright/ent"

// CreateConversationRequest contains fields for creating a conversation
type CreateConversationRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	Requirement    string `json:"requirement"`
	RepoURL        string `json:"repo_url"`
	Mode           Mode   `json:"mode,omitempty"`
}

// PostMessageRequest contains fields for appending a user message to an
// awaiting conversation
type PostMessageRequest struct {
	Content string `json:"content"`
}

// ConversationResponse wraps a Conversation
type ConversationResponse struct {
	*ent.Conversation
}

// ConversationsResponse contains a page of conversations
type ConversationsResponse struct {
	Conversations []*ent.Conversation `json:"conversations"`
}
