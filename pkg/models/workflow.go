// Package models defines the shared domain types exchanged between the
// workflow runtime, services, and the API layer.
package models

import (
	"encoding/json"
	"time"
)

// WorkflowStatus is the lifecycle status of a conversation.
type WorkflowStatus string

// Workflow status values. Transitions are monotonic except
// awaiting_user → running on resume.
const (
	StatusRunning      WorkflowStatus = "running"
	StatusAwaitingUser WorkflowStatus = "awaiting_user"
	StatusCompleted    WorkflowStatus = "completed"
	StatusFailed       WorkflowStatus = "failed"
	StatusCancelled    WorkflowStatus = "cancelled"
)

// Terminal reports whether the status is terminal.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Mode selects the code-generation strategy.
type Mode string

const (
	ModeScaffold Mode = "scaffold"
	ModeMaintain Mode = "maintain"
)

// Agent names, the closed set of workflow steps.
const (
	AgentRequirementAnalyzer = "requirement_analyzer"
	AgentRetrievalPlanner    = "retrieval_planner"
	AgentCodeGenerator       = "code_generator"
	AgentPatchApplier        = "patch_applier"
	AgentBuildVerifier       = "build_verifier"
	AgentFixGenerator        = "fix_generator"
	AgentPublisher           = "publisher"
)

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ConversationMessage is one entry of the ordered conversation log.
type ConversationMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// RequirementAnalysis is the output of the requirement analyzer agent.
type RequirementAnalysis struct {
	TaskType string `json:"task_type"`
	Domain   string `json:"domain"`
	Summary  string `json:"summary"`
}

// WorkflowState is the immutable snapshot value carried between agents.
// A transition produces a new WorkflowState via Clone(); the previous value
// is retained as an audit snapshot row. ConversationID never changes across
// a conversation's lifetime.
type WorkflowState struct {
	ConversationID string         `json:"conversation_id"`
	UserID         string         `json:"user_id,omitempty"`
	RepoURL        string         `json:"repo_url"`
	Mode           Mode           `json:"mode"`
	CurrentAgent   string         `json:"current_agent,omitempty"`
	Status         WorkflowStatus `json:"status"`
	Sequence       int            `json:"sequence"`

	Messages []ConversationMessage `json:"messages,omitempty"`

	Analysis      *RequirementAnalysis `json:"analysis,omitempty"`
	RetrievalPlan *RetrievalPlan       `json:"retrieval_plan,omitempty"`
	Context       []CodeContext        `json:"context,omitempty"`
	Patch         *Patch               `json:"patch,omitempty"`
	AppliedFiles  []string             `json:"applied_files,omitempty"`
	BuildResult   *BuildResult         `json:"build_result,omitempty"`
	BuildAttempts int                  `json:"build_attempts"`

	// LastErrorSignatures tracks the structured-error signature set of the
	// previous failed build, for the no-progress short-circuit.
	LastErrorSignatures []string `json:"last_error_signatures,omitempty"`

	WorkingDir string `json:"working_dir,omitempty"`
	BranchName string `json:"branch_name,omitempty"`
	BaseBranch string `json:"base_branch,omitempty"`
	PRURL      string `json:"pr_url,omitempty"`

	LastDecision *AgentDecision `json:"last_decision,omitempty"`

	// Scratch is a free-form bag for agent-private values that must survive
	// suspension (e.g. the pending question shown to the user).
	Scratch map[string]string `json:"scratch,omitempty"`
}

// Clone returns a deep copy. Agents mutate only the copy; the runtime
// snapshots the original before invoking them.
func (s *WorkflowState) Clone() *WorkflowState {
	out := *s
	if s.Messages != nil {
		out.Messages = make([]ConversationMessage, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	if s.Context != nil {
		out.Context = make([]CodeContext, len(s.Context))
		copy(out.Context, s.Context)
	}
	if s.AppliedFiles != nil {
		out.AppliedFiles = append([]string(nil), s.AppliedFiles...)
	}
	if s.LastErrorSignatures != nil {
		out.LastErrorSignatures = append([]string(nil), s.LastErrorSignatures...)
	}
	if s.Analysis != nil {
		a := *s.Analysis
		out.Analysis = &a
	}
	if s.RetrievalPlan != nil {
		out.RetrievalPlan = s.RetrievalPlan.Clone()
	}
	if s.Patch != nil {
		out.Patch = s.Patch.Clone()
	}
	if s.BuildResult != nil {
		out.BuildResult = s.BuildResult.Clone()
	}
	if s.LastDecision != nil {
		d := *s.LastDecision
		if s.LastDecision.Scratch != nil {
			d.Scratch = make(map[string]string, len(s.LastDecision.Scratch))
			for k, v := range s.LastDecision.Scratch {
				d.Scratch[k] = v
			}
		}
		out.LastDecision = &d
	}
	if s.Scratch != nil {
		out.Scratch = make(map[string]string, len(s.Scratch))
		for k, v := range s.Scratch {
			out.Scratch[k] = v
		}
	}
	return &out
}

// AppendMessage returns a copy with the message appended to the log.
func (s *WorkflowState) AppendMessage(role MessageRole, content string) *WorkflowState {
	out := s.Clone()
	out.Messages = append(out.Messages, ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	return out
}

// MarshalState serializes a WorkflowState for snapshot persistence.
func MarshalState(s *WorkflowState) (map[string]interface{}, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalState restores a WorkflowState from a persisted snapshot.
func UnmarshalState(m map[string]interface{}) (*WorkflowState, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var s WorkflowState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecisionKind is the tagged kind of an agent decision.
type DecisionKind string

const (
	DecisionContinue        DecisionKind = "continue"
	DecisionSuspendForInput DecisionKind = "suspend_for_input"
	DecisionComplete        DecisionKind = "complete"
	DecisionFail            DecisionKind = "fail"
	DecisionError           DecisionKind = "error"
)

// AgentDecision names the next transition. An empty NextAgent with kind
// complete/fail is terminal.
type AgentDecision struct {
	NextAgent string            `json:"next_agent,omitempty"`
	Kind      DecisionKind      `json:"kind"`
	Message   string            `json:"message,omitempty"`
	Scratch   map[string]string `json:"scratch,omitempty"`
}
