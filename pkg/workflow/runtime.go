package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/patchwright/patchwright/pkg/events"
	"github.com/patchwright/patchwright/pkg/models"
)

// Runtime drives one conversation through the agent state machine. It owns
// the snapshot-then-publish ordering: every transition is persisted before
// its event reaches a subscriber.
type Runtime struct {
	agents map[string]Agent
	svcs   *Services
	logger *slog.Logger
}

// NewRuntime registers the closed agent set.
func NewRuntime(svcs *Services) *Runtime {
	r := &Runtime{
		agents: make(map[string]Agent),
		svcs:   svcs,
		logger: svcs.Logger.With("service", "workflow"),
	}
	for _, a := range []Agent{
		&RequirementAnalyzer{},
		&RetrievalPlanner{},
		&CodeGenerator{},
		&PatchApplier{},
		&BuildVerifier{},
		&FixGenerator{},
		&Publisher{},
	} {
		r.agents[a.Name()] = a
	}
	return r
}

// Run executes agents from the state's current agent until a terminal
// decision, suspension, or cancellation. It is called on a worker-pool
// goroutine for both fresh starts and resumes.
func (r *Runtime) Run(ctx context.Context, state *models.WorkflowState) (*models.WorkflowState, error) {
	state = state.Clone()
	if state.CurrentAgent == "" {
		state.CurrentAgent = models.AgentRequirementAnalyzer
	}
	state.Status = models.StatusRunning

	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return r.fail(ctx, state, errors.New("conversation deadline exceeded"))
			}
			return r.cancel(ctx, state)
		}

		agent, ok := r.agents[state.CurrentAgent]
		if !ok {
			return r.fail(ctx, state, fmt.Errorf("unknown agent %q", state.CurrentAgent))
		}

		// Snapshot before the invocation so a crash mid-agent replays from
		// the step boundary, not from a half-applied transition.
		state.Sequence++
		if err := r.svcs.Persistence.SaveSnapshot(ctx, agent.Name(), state); err != nil {
			return state, fmt.Errorf("failed to snapshot before %s: %w", agent.Name(), err)
		}
		r.svcs.Notifier.Publish(ctx, events.StreamEvent{
			ConversationID: state.ConversationID,
			Status:         events.StatusRunning,
			Agent:          agent.Name(),
			Message:        fmt.Sprintf("running %s", agent.Name()),
		})

		transcriptMark := len(state.Messages)
		next, decision := agent.Execute(ctx, state, r.svcs)
		next.LastDecision = &decision
		r.mirrorTranscript(ctx, next, transcriptMark, agent.Name())
		if err := r.svcs.Persistence.Heartbeat(ctx, state.ConversationID); err != nil {
			r.logger.WarnContext(ctx, "heartbeat failed",
				"conversation_id", state.ConversationID, "error", err)
		}

		switch decision.Kind {
		case models.DecisionContinue:
			next.CurrentAgent = decision.NextAgent
			next.Sequence++
			if err := r.svcs.Persistence.SaveSnapshot(ctx, agent.Name(), next); err != nil {
				return next, fmt.Errorf("failed to snapshot after %s: %w", agent.Name(), err)
			}
			if decision.Message != "" {
				r.svcs.Notifier.Publish(ctx, events.StreamEvent{
					ConversationID: next.ConversationID,
					Status:         events.StatusPartial,
					Agent:          agent.Name(),
					Message:        decision.Message,
				})
			}
			state = next

		case models.DecisionSuspendForInput:
			return r.suspend(ctx, next, agent.Name(), decision)

		case models.DecisionComplete:
			return r.complete(ctx, next, agent.Name(), decision)

		case models.DecisionFail, models.DecisionError:
			return r.fail(ctx, next, errors.New(decision.Message))

		default:
			return r.fail(ctx, next, fmt.Errorf("agent %s returned unknown decision %q", agent.Name(), decision.Kind))
		}
	}
}

// mirrorTranscript copies messages the agent appended into the normalized
// conversation log, preserving order.
func (r *Runtime) mirrorTranscript(ctx context.Context, state *models.WorkflowState, from int, agent string) {
	for _, msg := range state.Messages[from:] {
		agentName := ""
		if msg.Role == models.RoleAssistant {
			agentName = agent
		}
		if err := r.svcs.Persistence.AppendTranscript(ctx, state.ConversationID, msg.Role, agentName, msg.Content); err != nil {
			r.logger.WarnContext(ctx, "failed to mirror transcript message",
				"conversation_id", state.ConversationID, "error", err)
		}
	}
}

func (r *Runtime) suspend(ctx context.Context, state *models.WorkflowState, agent string, decision models.AgentDecision) (*models.WorkflowState, error) {
	state.Status = models.StatusAwaitingUser
	state.Sequence++
	if err := r.svcs.Persistence.SaveSnapshot(ctx, agent, state); err != nil {
		return state, fmt.Errorf("failed to snapshot suspension: %w", err)
	}
	if err := r.svcs.Persistence.SetConversationStatus(ctx, state.ConversationID, models.StatusAwaitingUser, "", "", ""); err != nil {
		return state, err
	}
	r.svcs.Notifier.Publish(ctx, events.StreamEvent{
		ConversationID: state.ConversationID,
		Status:         events.StatusPartial,
		Agent:          agent,
		Message:        decision.Message,
	})
	r.logger.InfoContext(ctx, "conversation suspended for input",
		"conversation_id", state.ConversationID, "agent", agent)
	return state, nil
}

func (r *Runtime) complete(ctx context.Context, state *models.WorkflowState, agent string, decision models.AgentDecision) (*models.WorkflowState, error) {
	ctx = context.WithoutCancel(ctx)
	state.Status = models.StatusCompleted
	state.Sequence++
	if err := r.svcs.Persistence.SaveSnapshot(ctx, agent, state); err != nil {
		return state, fmt.Errorf("failed to snapshot completion: %w", err)
	}
	if err := r.svcs.Persistence.SetConversationStatus(ctx, state.ConversationID, models.StatusCompleted, "", state.PRURL, state.BranchName); err != nil {
		r.logger.WarnContext(ctx, "failed to record completion",
			"conversation_id", state.ConversationID, "error", err)
	}
	r.svcs.Notifier.Complete(ctx, state.ConversationID, decision.Message)
	r.logger.InfoContext(ctx, "conversation completed",
		"conversation_id", state.ConversationID, "pr_url", state.PRURL)
	return state, nil
}

func (r *Runtime) fail(ctx context.Context, state *models.WorkflowState, cause error) (*models.WorkflowState, error) {
	ctx = context.WithoutCancel(ctx)
	state.Status = models.StatusFailed
	state.Sequence++
	if err := r.svcs.Persistence.SaveSnapshot(ctx, state.CurrentAgent, state); err != nil {
		r.logger.ErrorContext(ctx, "failed to snapshot failure",
			"conversation_id", state.ConversationID, "error", err)
	}
	if err := r.svcs.Persistence.SetConversationStatus(ctx, state.ConversationID, models.StatusFailed, cause.Error(), "", state.BranchName); err != nil {
		r.logger.WarnContext(ctx, "failed to record failure",
			"conversation_id", state.ConversationID, "error", err)
	}
	r.svcs.Notifier.Fail(ctx, state.ConversationID, cause)
	r.logger.InfoContext(ctx, "conversation failed",
		"conversation_id", state.ConversationID, "error", cause)
	return state, nil
}

// cancel finalizes a conversation whose context was cancelled at a
// transition boundary. The final snapshot is persisted on a detached
// context; losing it would strand the conversation in running.
func (r *Runtime) cancel(ctx context.Context, state *models.WorkflowState) (*models.WorkflowState, error) {
	ctx = context.WithoutCancel(ctx)
	state.Status = models.StatusCancelled
	state.Sequence++
	if err := r.svcs.Persistence.SaveSnapshot(ctx, state.CurrentAgent, state); err != nil {
		r.logger.ErrorContext(ctx, "failed to snapshot cancellation",
			"conversation_id", state.ConversationID, "error", err)
	}
	if err := r.svcs.Persistence.SetConversationStatus(ctx, state.ConversationID, models.StatusCancelled, "", "", ""); err != nil {
		// The cancel endpoint may have already moved the row.
		r.logger.InfoContext(ctx, "cancellation status already recorded",
			"conversation_id", state.ConversationID, "error", err)
	}
	r.svcs.Notifier.Complete(ctx, state.ConversationID, "conversation cancelled")
	r.logger.InfoContext(ctx, "conversation cancelled",
		"conversation_id", state.ConversationID)
	return state, nil
}
