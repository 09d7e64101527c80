package hosting

import (
	"context"
	"fmt"

	"github.com/google/go-github/v60/github"
)

// GitHubClient opens pull requests via the GitHub API.
type GitHubClient struct {
	client *github.Client
}

// NewGitHubClient builds a client. baseURL is empty for github.com, or the
// API root of a GitHub Enterprise installation.
func NewGitHubClient(token, baseURL string) (*GitHubClient, error) {
	client := github.NewClient(nil).WithAuthToken(token)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid enterprise base URL %q: %w", baseURL, err)
		}
	}
	return &GitHubClient{client: client}, nil
}

func (c *GitHubClient) CreatePullRequest(ctx context.Context, repoURL string, pr PullRequest) (*CreatedPR, error) {
	owner, repo, err := SplitOwnerRepo(repoURL)
	if err != nil {
		return nil, err
	}

	created, _, err := c.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(pr.Title),
		Body:  github.String(pr.Body),
		Head:  github.String(pr.Head),
		Base:  github.String(pr.Base),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request on %s/%s: %w", owner, repo, err)
	}

	return &CreatedPR{
		URL:    created.GetHTMLURL(),
		Number: created.GetNumber(),
	}, nil
}
