package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Snapshot holds the schema definition for the Snapshot entity.
// Append-only WorkflowState history: one row per transition. Replaying the
// snapshot sequence for a conversation reproduces the full transcript.
type Snapshot struct {
	ent.Schema
}

// Fields of the Snapshot.
func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("snapshot_id").
			Unique().
			Immutable(),
		field.String("conversation_id").
			Immutable(),
		field.Int("sequence").
			Comment("Monotonic per-conversation transition counter"),
		field.String("agent").
			Optional().
			Comment("Agent that produced this state (empty for the initial snapshot)"),
		field.String("status"),
		field.JSON("state", map[string]interface{}{}).
			Comment("Serialized WorkflowState"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Snapshot.
func (Snapshot) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("conversation", Conversation.Type).
			Ref("snapshots").
			Field("conversation_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Snapshot.
func (Snapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("conversation_id", "sequence").
			Unique(),
	}
}
