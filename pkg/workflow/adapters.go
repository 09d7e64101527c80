package workflow

import (
	"context"

	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/services"
	"github.com/patchwright/patchwright/pkg/workspace"
)

// workspaceAdapter lifts *workspace.Workspace onto the WorkingCopy interface.
type workspaceAdapter struct {
	*workspace.Workspace
}

func (a workspaceAdapter) Dir() string { return a.Workspace.Dir }

// ManagerWorkspaces adapts *workspace.Manager to the Workspaces interface.
type ManagerWorkspaces struct {
	Manager *workspace.Manager
}

func (m ManagerWorkspaces) Clone(ctx context.Context, conversationID, rawURL string) (WorkingCopy, error) {
	ws, err := m.Manager.Clone(ctx, conversationID, rawURL)
	if err != nil {
		return nil, err
	}
	return workspaceAdapter{ws}, nil
}

func (m ManagerWorkspaces) Open(conversationID, repoURL, branch string) (WorkingCopy, error) {
	ws, err := m.Manager.Open(conversationID, repoURL, branch)
	if err != nil {
		return nil, err
	}
	return workspaceAdapter{ws}, nil
}

func (m ManagerWorkspaces) Remove(conversationID string) error {
	return m.Manager.Remove(conversationID)
}

// EntPersistence backs the Persistence interface with the ent services.
type EntPersistence struct {
	Conversations *services.ConversationService
	Messages      *services.MessageService
	Builds        *services.BuildService
}

func (p EntPersistence) SaveSnapshot(ctx context.Context, agent string, state *models.WorkflowState) error {
	return p.Conversations.SaveSnapshot(ctx, agent, state)
}

func (p EntPersistence) AppendTranscript(ctx context.Context, conversationID string, role models.MessageRole, agent, content string) error {
	_, err := p.Messages.AppendMessage(ctx, conversationID, role, agent, content)
	return err
}

func (p EntPersistence) RecordBuildAttempt(ctx context.Context, conversationID string, attempt int, result *models.BuildResult) error {
	_, err := p.Builds.RecordAttempt(ctx, conversationID, attempt, result)
	return err
}

func (p EntPersistence) SetConversationStatus(ctx context.Context, conversationID string, status models.WorkflowStatus, errorMessage, prURL, branch string) error {
	entStatus := conversation.Status(status)
	if status.Terminal() || errorMessage != "" || prURL != "" || branch != "" {
		return p.Conversations.FinishConversation(ctx, conversationID, entStatus, errorMessage, prURL, branch)
	}
	return p.Conversations.UpdateStatus(ctx, conversationID, entStatus)
}

func (p EntPersistence) Heartbeat(ctx context.Context, conversationID string) error {
	return p.Conversations.Heartbeat(ctx, conversationID)
}
