package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/models"
)

func TestSplitRepoURL(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantURL    string
		wantBranch string
	}{
		{
			name:    "plain url",
			in:      "https://github.com/acme/billing",
			wantURL: "https://github.com/acme/billing",
		},
		{
			name:       "github tree",
			in:         "https://github.com/acme/billing/tree/develop",
			wantURL:    "https://github.com/acme/billing",
			wantBranch: "develop",
		},
		{
			name:       "gitlab dash tree",
			in:         "https://gitlab.com/acme/billing/-/tree/feature/x",
			wantURL:    "https://gitlab.com/acme/billing",
			wantBranch: "feature/x",
		},
		{
			name:       "bitbucket src",
			in:         "https://bitbucket.org/acme/billing/src/main",
			wantURL:    "https://bitbucket.org/acme/billing",
			wantBranch: "main",
		},
		{
			name:       "azure version query",
			in:         "https://dev.azure.com/acme/_git/billing?version=GBrelease-2",
			wantURL:    "https://dev.azure.com/acme/_git/billing",
			wantBranch: "release-2",
		},
		{
			name:    "trailing slash trimmed",
			in:      "https://github.com/acme/billing/",
			wantURL: "https://github.com/acme/billing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotBranch := SplitRepoURL(tt.in)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantBranch, gotBranch)
		})
	}
}

func TestRepoName(t *testing.T) {
	assert.Equal(t, "billing", RepoName("https://github.com/acme/billing.git"))
	assert.Equal(t, "billing", RepoName("https://github.com/acme/billing"))
	assert.Equal(t, "billing", RepoName("git@github.com:acme/billing.git"))
}

func TestParseNameStatus_RenameBecomesDeletePlusAdd(t *testing.T) {
	out := strings.Join([]string{
		"M\tsrc/main/java/com/acme/A.java",
		"A\tsrc/main/java/com/acme/B.java",
		"D\tsrc/main/java/com/acme/C.java",
		"R100\tsrc/main/java/com/acme/Old.java\tsrc/main/java/com/acme/New.java",
	}, "\n")

	changes := parseNameStatus(out)
	require.Len(t, changes, 5)
	assert.Equal(t, models.ChangeModify, changes[0].ChangeType)
	assert.Equal(t, models.ChangeAdd, changes[1].ChangeType)
	assert.Equal(t, models.ChangeDelete, changes[2].ChangeType)
	assert.Equal(t, models.ChangedFile{RelativePath: "src/main/java/com/acme/Old.java", ChangeType: models.ChangeDelete}, changes[3])
	assert.Equal(t, models.ChangedFile{RelativePath: "src/main/java/com/acme/New.java", ChangeType: models.ChangeAdd}, changes[4])
}

func TestApply_WritesCreatesAndDeletes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.java"), []byte("old"), 0o644))
	ws := &Workspace{Dir: dir}

	patch := &models.Patch{
		BranchName: "feat/init",
		FileEdits: []models.FileEdit{
			{Path: "src/main/java/App.java", Op: models.OpCreate, Content: "public class App {}"},
			{Path: "stale.java", Op: models.OpDelete},
		},
		TestsAdded: []models.FileEdit{
			{Path: "src/test/java/AppTest.java", Content: "public class AppTest {}"},
		},
	}

	applied, err := ws.Apply(patch)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main/java/App.java", "stale.java", "src/test/java/AppTest.java"}, applied)

	content, err := os.ReadFile(filepath.Join(dir, "src/main/java/App.java"))
	require.NoError(t, err)
	assert.Equal(t, "public class App {}", string(content))
	assert.NoFileExists(t, filepath.Join(dir, "stale.java"))
	assert.FileExists(t, filepath.Join(dir, "src/test/java/AppTest.java"))
}

func TestApply_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ws := &Workspace{Dir: dir}
	patch := &models.Patch{
		FileEdits: []models.FileEdit{
			{Path: "a.java", Op: models.OpCreate, Content: "class A {}"},
			{Path: "gone.java", Op: models.OpDelete},
		},
	}

	_, err := ws.Apply(patch)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, "a.java"))
	require.NoError(t, err)

	_, err = ws.Apply(patch)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "a.java"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestApply_RejectsEscapingPaths(t *testing.T) {
	ws := &Workspace{Dir: t.TempDir()}

	_, err := ws.Apply(&models.Patch{
		FileEdits: []models.FileEdit{{Path: "../outside.java", Op: models.OpCreate, Content: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the working copy")

	_, err = ws.Apply(&models.Patch{
		FileEdits: []models.FileEdit{{Path: "/etc/passwd", Op: models.OpModify, Content: "x"}},
	})
	require.Error(t, err)
}

// recordingGit captures git invocations and replays canned outputs.
type recordingGit struct {
	calls   [][]string
	outputs map[string]string
}

func (r *recordingGit) run(_ context.Context, dir string, args ...string) (string, error) {
	r.calls = append(r.calls, args)
	return r.outputs[args[0]], nil
}

func TestCommitAll_SkipsCommitOnCleanTree(t *testing.T) {
	git := &recordingGit{outputs: map[string]string{"status": ""}}
	ws := &Workspace{Dir: "/tmp/x", git: git}

	require.NoError(t, ws.CommitAll(context.Background(), "apply generated patch"))

	require.Len(t, git.calls, 2)
	assert.Equal(t, "add", git.calls[0][0])
	assert.Equal(t, "status", git.calls[1][0])
}

func TestCommitAll_CommitsDirtyTree(t *testing.T) {
	git := &recordingGit{outputs: map[string]string{"status": "M a.java"}}
	ws := &Workspace{Dir: "/tmp/x", git: git}

	require.NoError(t, ws.CommitAll(context.Background(), "apply generated patch"))

	require.Len(t, git.calls, 3)
	assert.Equal(t, []string{"commit", "-m", "apply generated patch"}, git.calls[2])
}

func TestPush_SetsUpstream(t *testing.T) {
	git := &recordingGit{outputs: map[string]string{}}
	ws := &Workspace{Dir: "/tmp/x", git: git}

	require.NoError(t, ws.Push(context.Background(), "feat/init-project"))
	require.Len(t, git.calls, 1)
	assert.Equal(t, []string{"push", "-u", "origin", "feat/init-project"}, git.calls[0])
}
