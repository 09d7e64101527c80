// Package workspace manages per-conversation git working copies: cloning,
// branching, committing, pushing, and the diff and file access the indexer
// and agents need.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/patchwright/patchwright/pkg/config"
)

// Manager clones repositories into per-conversation directories.
type Manager struct {
	cfg    config.WorkspaceConfig
	git    gitRunner
	logger *slog.Logger
}

// NewManager creates a working-copy manager.
func NewManager(cfg config.WorkspaceConfig, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		git:    execGit{},
		logger: logger.With("service", "workspace"),
	}
}

// Clone checks out the repository for one conversation. The user-supplied
// URL may embed a branch reference; it is split off and checked out. A
// failed clone removes the directory synchronously before returning.
func (m *Manager) Clone(ctx context.Context, conversationID, rawURL string) (*Workspace, error) {
	cloneURL, branch := SplitRepoURL(rawURL)
	dir := filepath.Join(m.cfg.RootDir, conversationID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace dir: %w", err)
	}

	args := []string{"clone"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, m.authenticatedURL(cloneURL), dir)

	if _, err := m.git.run(ctx, "", args...); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			m.logger.ErrorContext(ctx, "failed to clean workspace after clone failure",
				"conversation_id", conversationID, "dir", dir, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to clone %s: %w", cloneURL, err)
	}

	ws := &Workspace{
		ConversationID: conversationID,
		RepoURL:        cloneURL,
		Branch:         branch,
		Dir:            dir,
		git:            m.git,
	}
	if err := ws.configureIdentity(ctx, m.cfg.GitUserName, m.cfg.GitUserEmail); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	m.logger.InfoContext(ctx, "cloned working copy",
		"conversation_id", conversationID, "repo", RepoName(cloneURL), "branch", branch)
	return ws, nil
}

// Open attaches to an existing working copy, for resumed conversations.
func (m *Manager) Open(conversationID, repoURL, branch string) (*Workspace, error) {
	dir := filepath.Join(m.cfg.RootDir, conversationID)
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil, fmt.Errorf("no working copy for conversation %s: %w", conversationID, err)
	}
	return &Workspace{
		ConversationID: conversationID,
		RepoURL:        repoURL,
		Branch:         branch,
		Dir:            dir,
		git:            m.git,
	}, nil
}

// Remove deletes a conversation's working copy.
func (m *Manager) Remove(conversationID string) error {
	return os.RemoveAll(filepath.Join(m.cfg.RootDir, conversationID))
}

// authenticatedURL injects the push credential into an https clone URL. The
// credential never appears in logs; callers log the clean URL only.
func (m *Manager) authenticatedURL(cloneURL string) string {
	token := os.Getenv(m.cfg.TokenEnv)
	if token == "" {
		return cloneURL
	}
	u, err := url.Parse(cloneURL)
	if err != nil || u.Scheme != "https" {
		return cloneURL
	}
	u.User = url.UserPassword("oauth2", token)
	return u.String()
}
