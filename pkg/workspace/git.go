package workspace

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// gitRunner executes git commands in a directory. Swapped for a recorder in
// tests that must not touch a real repository.
type gitRunner interface {
	run(ctx context.Context, dir string, args ...string) (string, error)
}

type execGit struct{}

func (execGit) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
