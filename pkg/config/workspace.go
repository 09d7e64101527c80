package config

// WorkspaceConfig controls working-copy management.
type WorkspaceConfig struct {
	// RootDir is where per-conversation working copies are cloned.
	RootDir string `yaml:"root_dir"`

	// GitUserName and GitUserEmail author workflow commits.
	GitUserName  string `yaml:"git_user_name"`
	GitUserEmail string `yaml:"git_user_email"`

	// TokenEnv names the environment variable holding the push credential.
	TokenEnv string `yaml:"token_env"`
}

// DefaultWorkspaceConfig returns the built-in workspace defaults.
func DefaultWorkspaceConfig() *WorkspaceConfig {
	return &WorkspaceConfig{
		RootDir:      "/tmp/patchwright/workspaces",
		GitUserName:  "patchwright",
		GitUserEmail: "patchwright@localhost",
		TokenEnv:     "GIT_TOKEN",
	}
}

// HostingConfig controls the pull-request host client.
type HostingConfig struct {
	// Provider selects the PR client implementation.
	Provider string `yaml:"provider"`

	// TokenEnv names the environment variable holding the API token.
	TokenEnv string `yaml:"token_env"`

	// BaseURL overrides the API endpoint for self-hosted installations.
	BaseURL string `yaml:"base_url,omitempty"`
}

// DefaultHostingConfig returns the built-in hosting defaults.
func DefaultHostingConfig() *HostingConfig {
	return &HostingConfig{
		Provider: "github",
		TokenEnv: "GITHUB_TOKEN",
	}
}
