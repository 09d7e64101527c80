// Code generated by ent, DO NOT EDIT.

package migrate

import (
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// BuildAttemptsColumns holds the columns for the "build_attempts" table.
	BuildAttemptsColumns = []*schema.Column{
		{Name: "attempt_id", Type: field.TypeString, Unique: true},
		{Name: "attempt", Type: field.TypeInt},
		{Name: "success", Type: field.TypeBool},
		{Name: "duration_ms", Type: field.TypeInt64},
		{Name: "error_count", Type: field.TypeInt},
		{Name: "log_excerpt", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "conversation_id", Type: field.TypeString},
	}
	// BuildAttemptsTable holds the schema information for the "build_attempts" table.
	BuildAttemptsTable = &schema.Table{
		Name:       "build_attempts",
		Columns:    BuildAttemptsColumns,
		PrimaryKey: []*schema.Column{BuildAttemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "build_attempts_conversations_build_attempts",
				Columns:    []*schema.Column{BuildAttemptsColumns[7]},
				RefColumns: []*schema.Column{ConversationsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "buildattempt_conversation_id_attempt",
				Unique:  false,
				Columns: []*schema.Column{BuildAttemptsColumns[7], BuildAttemptsColumns[1]},
			},
		},
	}
	// ConversationsColumns holds the columns for the "conversations" table.
	ConversationsColumns = []*schema.Column{
		{Name: "conversation_id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString, Nullable: true},
		{Name: "requirement", Type: field.TypeString, Size: 2147483647},
		{Name: "repo_url", Type: field.TypeString},
		{Name: "mode", Type: field.TypeEnum, Enums: []string{"scaffold", "maintain"}, Default: "maintain"},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"pending", "running", "awaiting_user", "completed", "failed", "cancelled"}, Default: "pending"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "started_at", Type: field.TypeTime, Nullable: true},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "error_message", Type: field.TypeString, Nullable: true},
		{Name: "pr_url", Type: field.TypeString, Nullable: true},
		{Name: "branch_name", Type: field.TypeString, Nullable: true},
		{Name: "current_agent", Type: field.TypeString, Nullable: true},
		{Name: "pod_id", Type: field.TypeString, Nullable: true},
		{Name: "last_interaction_at", Type: field.TypeTime, Nullable: true},
		{Name: "deleted_at", Type: field.TypeTime, Nullable: true},
	}
	// ConversationsTable holds the schema information for the "conversations" table.
	ConversationsTable = &schema.Table{
		Name:       "conversations",
		Columns:    ConversationsColumns,
		PrimaryKey: []*schema.Column{ConversationsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "conversation_status",
				Unique:  false,
				Columns: []*schema.Column{ConversationsColumns[5]},
			},
			{
				Name:    "conversation_repo_url",
				Unique:  false,
				Columns: []*schema.Column{ConversationsColumns[3]},
			},
			{
				Name:    "conversation_status_created_at",
				Unique:  false,
				Columns: []*schema.Column{ConversationsColumns[5], ConversationsColumns[6]},
			},
			{
				Name:    "conversation_status_last_interaction_at",
				Unique:  false,
				Columns: []*schema.Column{ConversationsColumns[5], ConversationsColumns[14]},
			},
			{
				Name:    "conversation_deleted_at",
				Unique:  false,
				Columns: []*schema.Column{ConversationsColumns[15]},
				Annotation: &entsql.IndexAnnotation{
					Where: "deleted_at IS NOT NULL",
				},
			},
		},
	}
	// EventsColumns holds the columns for the "events" table.
	EventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "payload", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "conversation_id", Type: field.TypeString},
	}
	// EventsTable holds the schema information for the "events" table.
	EventsTable = &schema.Table{
		Name:       "events",
		Columns:    EventsColumns,
		PrimaryKey: []*schema.Column{EventsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "events_conversations_events",
				Columns:    []*schema.Column{EventsColumns[3]},
				RefColumns: []*schema.Column{ConversationsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "event_conversation_id_id",
				Unique:  false,
				Columns: []*schema.Column{EventsColumns[3], EventsColumns[0]},
			},
			{
				Name:    "event_created_at",
				Unique:  false,
				Columns: []*schema.Column{EventsColumns[2]},
			},
		},
	}
	// LlmInteractionsColumns holds the columns for the "llm_interactions" table.
	LlmInteractionsColumns = []*schema.Column{
		{Name: "interaction_id", Type: field.TypeString, Unique: true},
		{Name: "agent", Type: field.TypeString, Nullable: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "op", Type: field.TypeEnum, Enums: []string{"chat", "embed"}},
		{Name: "model", Type: field.TypeString, Nullable: true},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "outcome", Type: field.TypeEnum, Enums: []string{"success", "error"}},
		{Name: "error_message", Type: field.TypeString, Nullable: true},
		{Name: "input_tokens", Type: field.TypeInt, Nullable: true},
		{Name: "output_tokens", Type: field.TypeInt, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "conversation_id", Type: field.TypeString},
	}
	// LlmInteractionsTable holds the schema information for the "llm_interactions" table.
	LlmInteractionsTable = &schema.Table{
		Name:       "llm_interactions",
		Columns:    LlmInteractionsColumns,
		PrimaryKey: []*schema.Column{LlmInteractionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "llm_interactions_conversations_llm_interactions",
				Columns:    []*schema.Column{LlmInteractionsColumns[11]},
				RefColumns: []*schema.Column{ConversationsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "llminteraction_conversation_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{LlmInteractionsColumns[11], LlmInteractionsColumns[10]},
			},
		},
	}
	// MessagesColumns holds the columns for the "messages" table.
	MessagesColumns = []*schema.Column{
		{Name: "message_id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt},
		{Name: "role", Type: field.TypeEnum, Enums: []string{"user", "assistant", "system"}},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "agent", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "conversation_id", Type: field.TypeString},
	}
	// MessagesTable holds the schema information for the "messages" table.
	MessagesTable = &schema.Table{
		Name:       "messages",
		Columns:    MessagesColumns,
		PrimaryKey: []*schema.Column{MessagesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "messages_conversations_messages",
				Columns:    []*schema.Column{MessagesColumns[6]},
				RefColumns: []*schema.Column{ConversationsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "message_conversation_id_sequence",
				Unique:  true,
				Columns: []*schema.Column{MessagesColumns[6], MessagesColumns[1]},
			},
		},
	}
	// SnapshotsColumns holds the columns for the "snapshots" table.
	SnapshotsColumns = []*schema.Column{
		{Name: "snapshot_id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt},
		{Name: "agent", Type: field.TypeString, Nullable: true},
		{Name: "status", Type: field.TypeString},
		{Name: "state", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "conversation_id", Type: field.TypeString},
	}
	// SnapshotsTable holds the schema information for the "snapshots" table.
	SnapshotsTable = &schema.Table{
		Name:       "snapshots",
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "snapshots_conversations_snapshots",
				Columns:    []*schema.Column{SnapshotsColumns[6]},
				RefColumns: []*schema.Column{ConversationsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "snapshot_conversation_id_sequence",
				Unique:  true,
				Columns: []*schema.Column{SnapshotsColumns[6], SnapshotsColumns[1]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		BuildAttemptsTable,
		ConversationsTable,
		EventsTable,
		LlmInteractionsTable,
		MessagesTable,
		SnapshotsTable,
	}
)

func init() {
	BuildAttemptsTable.ForeignKeys[0].RefTable = ConversationsTable
	EventsTable.ForeignKeys[0].RefTable = ConversationsTable
	LlmInteractionsTable.ForeignKeys[0].RefTable = ConversationsTable
	MessagesTable.ForeignKeys[0].RefTable = ConversationsTable
	SnapshotsTable.ForeignKeys[0].RefTable = ConversationsTable
}
