package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMInteraction holds the schema definition for the LLMInteraction entity.
// One row per chat/embed call made on behalf of a conversation.
type LLMInteraction struct {
	ent.Schema
}

// Fields of the LLMInteraction.
func (LLMInteraction) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("interaction_id").
			Unique().
			Immutable(),
		field.String("conversation_id").
			Immutable(),
		field.String("agent").
			Optional(),
		field.String("provider"),
		field.Enum("op").
			Values("chat", "embed"),
		field.String("model").
			Optional(),
		field.Int64("latency_ms"),
		field.Enum("outcome").
			Values("success", "error"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Int("input_tokens").
			Optional(),
		field.Int("output_tokens").
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the LLMInteraction.
func (LLMInteraction) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("conversation", Conversation.Type).
			Ref("llm_interactions").
			Field("conversation_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the LLMInteraction.
func (LLMInteraction) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("conversation_id", "created_at"),
	}
}
