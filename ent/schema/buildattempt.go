package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// BuildAttempt holds the schema definition for the BuildAttempt entity.
// One row per compile attempt inside the build-repair loop.
type BuildAttempt struct {
	ent.Schema
}

// Fields of the BuildAttempt.
func (BuildAttempt) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("attempt_id").
			Unique().
			Immutable(),
		field.String("conversation_id").
			Immutable(),
		field.Int("attempt"),
		field.Bool("success"),
		field.Int64("duration_ms"),
		field.Int("error_count"),
		field.Text("log_excerpt").
			Optional().
			Comment("Tail of the raw build log, bounded"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the BuildAttempt.
func (BuildAttempt) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("conversation", Conversation.Type).
			Ref("build_attempts").
			Field("conversation_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the BuildAttempt.
func (BuildAttempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("conversation_id", "attempt"),
	}
}
