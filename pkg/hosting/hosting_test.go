package hosting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/config"
)

func TestSplitOwnerRepo(t *testing.T) {
	tests := []struct {
		in        string
		owner     string
		repo      string
		expectErr bool
	}{
		{in: "https://github.com/acme/billing", owner: "acme", repo: "billing"},
		{in: "https://github.com/acme/billing.git", owner: "acme", repo: "billing"},
		{in: "https://github.com/acme/billing/", owner: "acme", repo: "billing"},
		{in: "git@github.com:acme/billing.git", owner: "acme", repo: "billing"},
		{in: "https://ghe.example.com/platform/acme/billing", owner: "acme", repo: "billing"},
		{in: "https://github.com/just-a-user", expectErr: true},
	}
	for _, tt := range tests {
		owner, repo, err := SplitOwnerRepo(tt.in)
		if tt.expectErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.owner, owner, tt.in)
		assert.Equal(t, tt.repo, repo, tt.in)
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	t.Setenv("PATCHWRIGHT_TEST_HOSTING_TOKEN", "")
	_, err := NewClient(config.HostingConfig{Provider: "github", TokenEnv: "PATCHWRIGHT_TEST_HOSTING_TOKEN"})
	require.Error(t, err)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(config.HostingConfig{Provider: "sourcehut"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sourcehut")
}

func TestNewClient_GitHub(t *testing.T) {
	t.Setenv("PATCHWRIGHT_TEST_HOSTING_TOKEN", "tok")
	c, err := NewClient(config.HostingConfig{Provider: "github", TokenEnv: "PATCHWRIGHT_TEST_HOSTING_TOKEN"})
	require.NoError(t, err)
	assert.IsType(t, &GitHubClient{}, c)
}
