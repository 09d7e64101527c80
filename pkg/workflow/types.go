// Package workflow is the agent runtime: the state machine that drives a
// conversation through analysis, retrieval, code generation, the
// build-repair loop, and publishing.
package workflow

import (
	"context"
	"log/slog"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/events"
	"github.com/patchwright/patchwright/pkg/hosting"
	"github.com/patchwright/patchwright/pkg/index"
	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
)

// Agent is one step of the workflow: a function from state to a new state
// plus the decision naming the next transition. Agents never persist or
// publish; the runtime owns snapshots and events.
type Agent interface {
	Name() string
	Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision)
}

// WorkingCopy is the slice of the working-copy manager agents use.
type WorkingCopy interface {
	index.WorkingCopy
	Dir() string
	CurrentBranch(ctx context.Context) (string, error)
	CreateBranch(ctx context.Context, name, base string) error
	CommitAll(ctx context.Context, message string) error
	Push(ctx context.Context, branch string) error
	Apply(patch *models.Patch) ([]string, error)
}

// Workspaces creates and reopens per-conversation working copies.
type Workspaces interface {
	Clone(ctx context.Context, conversationID, rawURL string) (WorkingCopy, error)
	Open(conversationID, repoURL, branch string) (WorkingCopy, error)
	Remove(conversationID string) error
}

// RepoIndexer keeps the vector index and code graph in sync with a
// repository. Implemented by index.Indexer.
type RepoIndexer interface {
	Sync(ctx context.Context, wc index.WorkingCopy, repo string, force bool) (*index.SyncResult, error)
}

// Retriever assembles the context bundle for code generation. Implemented by
// retrieval.Engine.
type Retriever interface {
	Retrieve(ctx context.Context, conversationID, question string, analysis *models.RequirementAnalysis, repo string) (*models.RetrievalPlan, []models.CodeContext, error)
}

// Compiler runs one build over a working copy. Implemented by
// build.ExecDriver.
type Compiler interface {
	Build(ctx context.Context, dir string) (*models.BuildResult, error)
}

// Persistence is the slice of the relational services the runtime needs.
type Persistence interface {
	SaveSnapshot(ctx context.Context, agent string, state *models.WorkflowState) error
	AppendTranscript(ctx context.Context, conversationID string, role models.MessageRole, agent, content string) error
	RecordBuildAttempt(ctx context.Context, conversationID string, attempt int, result *models.BuildResult) error
	SetConversationStatus(ctx context.Context, conversationID string, status models.WorkflowStatus, errorMessage, prURL, branch string) error
	Heartbeat(ctx context.Context, conversationID string) error
}

// Notifier publishes stream events. Implemented by events.Publisher.
type Notifier interface {
	Publish(ctx context.Context, ev events.StreamEvent)
	Complete(ctx context.Context, conversationID, message string)
	Fail(ctx context.Context, conversationID string, err error)
}

// Services is the collaborator bundle handed to every agent. Constructed
// once at the composition root.
type Services struct {
	Provider   llm.Provider
	Retrieval  Retriever
	Workspaces Workspaces
	Indexer    RepoIndexer
	Compiler   Compiler
	Hosting    hosting.Client

	Persistence Persistence
	Notifier    Notifier

	BuildCfg config.BuildConfig
	Logger   *slog.Logger
}
