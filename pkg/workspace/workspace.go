package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patchwright/patchwright/pkg/models"
)

// Workspace is one conversation's checked-out working copy. It satisfies the
// indexer's WorkingCopy interface.
type Workspace struct {
	ConversationID string
	RepoURL        string
	Branch         string
	Dir            string

	git gitRunner
}

func (w *Workspace) configureIdentity(ctx context.Context, name, email string) error {
	if _, err := w.git.run(ctx, w.Dir, "config", "user.name", name); err != nil {
		return err
	}
	if _, err := w.git.run(ctx, w.Dir, "config", "user.email", email); err != nil {
		return err
	}
	return nil
}

// Head returns the current HEAD commit ID.
func (w *Workspace) Head(ctx context.Context) (string, error) {
	return w.git.run(ctx, w.Dir, "rev-parse", "HEAD")
}

// CurrentBranch returns the checked-out branch name.
func (w *Workspace) CurrentBranch(ctx context.Context) (string, error) {
	return w.git.run(ctx, w.Dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// CreateBranch creates and checks out a branch off the given base. An empty
// base branches from the current HEAD.
func (w *Workspace) CreateBranch(ctx context.Context, name, base string) error {
	args := []string{"checkout", "-b", name}
	if base != "" {
		args = append(args, base)
	}
	if _, err := w.git.run(ctx, w.Dir, args...); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return nil
}

// CommitAll stages every working-tree change and commits. Committing with a
// clean tree is a no-op, not an error.
func (w *Workspace) CommitAll(ctx context.Context, message string) error {
	if _, err := w.git.run(ctx, w.Dir, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	status, err := w.git.run(ctx, w.Dir, "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("failed to check status: %w", err)
	}
	if status == "" {
		return nil
	}
	if _, err := w.git.run(ctx, w.Dir, "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Push publishes the branch with upstream tracking.
func (w *Workspace) Push(ctx context.Context, branch string) error {
	if _, err := w.git.run(ctx, w.Dir, "push", "-u", "origin", branch); err != nil {
		return fmt.Errorf("failed to push %s: %w", branch, err)
	}
	return nil
}

// Diff lists the files changed between two commits. Renames are expanded to
// a delete of the old path plus an add of the new one.
func (w *Workspace) Diff(ctx context.Context, fromCommit, toCommit string) ([]models.ChangedFile, error) {
	out, err := w.git.run(ctx, w.Dir, "diff", "--name-status", "-M", fromCommit, toCommit)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", fromCommit, toCommit, err)
	}
	return parseNameStatus(out), nil
}

// parseNameStatus decodes `git diff --name-status` output.
func parseNameStatus(out string) []models.ChangedFile {
	var changes []models.ChangedFile
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		switch {
		case strings.HasPrefix(status, "R") && len(fields) >= 3:
			changes = append(changes,
				models.ChangedFile{RelativePath: fields[1], ChangeType: models.ChangeDelete},
				models.ChangedFile{RelativePath: fields[2], ChangeType: models.ChangeAdd})
		case status == "A":
			changes = append(changes, models.ChangedFile{RelativePath: fields[1], ChangeType: models.ChangeAdd})
		case status == "D":
			changes = append(changes, models.ChangedFile{RelativePath: fields[1], ChangeType: models.ChangeDelete})
		default:
			changes = append(changes, models.ChangedFile{RelativePath: fields[1], ChangeType: models.ChangeModify})
		}
	}
	return changes
}

// ListFiles returns all tracked files as repository-relative paths.
func (w *Workspace) ListFiles(ctx context.Context) ([]string, error) {
	out, err := w.git.run(ctx, w.Dir, "ls-files")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// ReadFile reads one file by repository-relative path.
func (w *Workspace) ReadFile(relPath string) ([]byte, error) {
	clean, err := w.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(clean)
}

// Apply writes a patch's file edits into the working tree and returns the
// list of applied paths. Re-applying an identical patch leaves file contents
// unchanged. Paths that escape the working copy are rejected.
func (w *Workspace) Apply(patch *models.Patch) ([]string, error) {
	if patch == nil {
		return nil, nil
	}
	var applied []string
	edits := append([]models.FileEdit(nil), patch.FileEdits...)
	edits = append(edits, patch.TestsAdded...)

	for _, edit := range edits {
		abs, err := w.resolve(edit.Path)
		if err != nil {
			return applied, err
		}
		switch edit.Op {
		case models.OpDelete:
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return applied, fmt.Errorf("failed to delete %s: %w", edit.Path, err)
			}
		// Test additions often omit the op; they are creates.
		case models.OpCreate, models.OpModify, "":
			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				return applied, fmt.Errorf("failed to create dir for %s: %w", edit.Path, err)
			}
			if err := os.WriteFile(abs, []byte(edit.Content), 0o644); err != nil {
				return applied, fmt.Errorf("failed to write %s: %w", edit.Path, err)
			}
		default:
			return applied, fmt.Errorf("unknown file op %q for %s", edit.Op, edit.Path)
		}
		applied = append(applied, edit.Path)
	}
	return applied, nil
}

// resolve joins a repository-relative path and rejects traversal outside
// the working copy.
func (w *Workspace) resolve(relPath string) (string, error) {
	clean := filepath.Clean(relPath)
	if clean == ".." || strings.HasPrefix(clean, "../") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("path %q escapes the working copy", relPath)
	}
	return filepath.Join(w.Dir, clean), nil
}
