// Package hosting publishes pull requests on the git hosting provider.
package hosting

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/patchwright/patchwright/pkg/config"
)

// PullRequest describes the PR to open.
type PullRequest struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// CreatedPR is the provider's record of the opened pull request.
type CreatedPR struct {
	URL    string
	Number int
}

// Client opens pull requests. repoURL is the clean clone URL.
type Client interface {
	CreatePullRequest(ctx context.Context, repoURL string, pr PullRequest) (*CreatedPR, error)
}

// NewClient builds the configured provider client.
func NewClient(cfg config.HostingConfig) (Client, error) {
	switch cfg.Provider {
	case "github":
		token := os.Getenv(cfg.TokenEnv)
		if token == "" {
			return nil, fmt.Errorf("hosting: environment variable %s is not set", cfg.TokenEnv)
		}
		return NewGitHubClient(token, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("hosting: unknown provider %q", cfg.Provider)
	}
}

// SplitOwnerRepo extracts the owner and repository name from a clone URL.
func SplitOwnerRepo(repoURL string) (owner, repo string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(repoURL, "/"), ".git")

	if strings.HasPrefix(trimmed, "git@") {
		// git@host:owner/repo
		if idx := strings.Index(trimmed, ":"); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		parts := strings.Split(trimmed, "/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("cannot parse owner/repo from %q", repoURL)
		}
		return parts[0], parts[1], nil
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("cannot parse repository URL %q: %w", repoURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("cannot parse owner/repo from %q", repoURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
