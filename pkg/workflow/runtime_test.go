package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/events"
	"github.com/patchwright/patchwright/pkg/hosting"
	"github.com/patchwright/patchwright/pkg/index"
	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
)

// --- fakes -----------------------------------------------------------------

// scriptedProvider returns canned responses per agent, in order.
type scriptedProvider struct {
	replies map[string][]string
	calls   []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	p.calls = append(p.calls, req.Agent)
	queue := p.replies[req.Agent]
	if len(queue) == 0 {
		return nil, fmt.Errorf("no scripted reply for %s", req.Agent)
	}
	reply := queue[0]
	p.replies[req.Agent] = queue[1:]
	return &llm.ChatResponse{Content: reply}, nil
}

func (p *scriptedProvider) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (p *scriptedProvider) Close() error { return nil }

type snapshotRecord struct {
	agent    string
	status   models.WorkflowStatus
	sequence int
}

type fakePersistence struct {
	snapshots  []snapshotRecord
	transcript []string
	attempts   []int
	statuses   []models.WorkflowStatus
	lastError  string
}

func (f *fakePersistence) SaveSnapshot(_ context.Context, agent string, state *models.WorkflowState) error {
	f.snapshots = append(f.snapshots, snapshotRecord{agent: agent, status: state.Status, sequence: state.Sequence})
	return nil
}

func (f *fakePersistence) AppendTranscript(_ context.Context, _ string, role models.MessageRole, _ string, content string) error {
	f.transcript = append(f.transcript, fmt.Sprintf("%s: %s", role, content))
	return nil
}

func (f *fakePersistence) RecordBuildAttempt(_ context.Context, _ string, attempt int, _ *models.BuildResult) error {
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakePersistence) SetConversationStatus(_ context.Context, _ string, status models.WorkflowStatus, errorMessage, _, _ string) error {
	f.statuses = append(f.statuses, status)
	f.lastError = errorMessage
	return nil
}

func (f *fakePersistence) Heartbeat(_ context.Context, _ string) error { return nil }

type fakeNotifier struct {
	published []events.StreamEvent
	completed bool
	failed    bool
}

func (f *fakeNotifier) Publish(_ context.Context, ev events.StreamEvent) {
	f.published = append(f.published, ev)
}

func (f *fakeNotifier) Complete(_ context.Context, conversationID, message string) {
	f.completed = true
	f.published = append(f.published, events.StreamEvent{
		ConversationID: conversationID, Status: events.StatusComplete, Message: message,
	})
}

func (f *fakeNotifier) Fail(_ context.Context, conversationID string, err error) {
	f.failed = true
	f.published = append(f.published, events.StreamEvent{
		ConversationID: conversationID, Status: events.StatusError, Message: err.Error(),
	})
}

type fakeWorkingCopy struct {
	dir      string
	branch   string
	branches []string
	commits  []string
	pushed   []string
	applied  []*models.Patch
	applyErr error
}

func (f *fakeWorkingCopy) Dir() string                                 { return f.dir }
func (f *fakeWorkingCopy) Head(context.Context) (string, error)        { return "commit-a", nil }
func (f *fakeWorkingCopy) ListFiles(context.Context) ([]string, error) { return nil, nil }
func (f *fakeWorkingCopy) ReadFile(string) ([]byte, error)             { return nil, nil }
func (f *fakeWorkingCopy) Diff(context.Context, string, string) ([]models.ChangedFile, error) {
	return nil, nil
}
func (f *fakeWorkingCopy) CurrentBranch(context.Context) (string, error) { return f.branch, nil }
func (f *fakeWorkingCopy) CreateBranch(_ context.Context, name, _ string) error {
	f.branches = append(f.branches, name)
	return nil
}
func (f *fakeWorkingCopy) CommitAll(_ context.Context, message string) error {
	f.commits = append(f.commits, message)
	return nil
}
func (f *fakeWorkingCopy) Push(_ context.Context, branch string) error {
	f.pushed = append(f.pushed, branch)
	return nil
}
func (f *fakeWorkingCopy) Apply(patch *models.Patch) ([]string, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.applied = append(f.applied, patch)
	var paths []string
	for _, e := range patch.FileEdits {
		paths = append(paths, e.Path)
	}
	for _, e := range patch.TestsAdded {
		paths = append(paths, e.Path)
	}
	return paths, nil
}

type fakeWorkspaces struct {
	wc       *fakeWorkingCopy
	cloneErr error
	cloned   []string
}

func (f *fakeWorkspaces) Clone(_ context.Context, conversationID, _ string) (WorkingCopy, error) {
	if f.cloneErr != nil {
		return nil, f.cloneErr
	}
	f.cloned = append(f.cloned, conversationID)
	return f.wc, nil
}

func (f *fakeWorkspaces) Open(string, string, string) (WorkingCopy, error) { return f.wc, nil }
func (f *fakeWorkspaces) Remove(string) error                              { return nil }

type fakeIndexer struct {
	syncs int
}

func (f *fakeIndexer) Sync(context.Context, index.WorkingCopy, string, bool) (*index.SyncResult, error) {
	f.syncs++
	return &index.SyncResult{Kind: index.SyncNoChanges}, nil
}

type fakeRetriever struct {
	contexts []models.CodeContext
	calls    int
}

func (f *fakeRetriever) Retrieve(context.Context, string, string, *models.RequirementAnalysis, string) (*models.RetrievalPlan, []models.CodeContext, error) {
	f.calls++
	return &models.RetrievalPlan{Strategies: []models.RetrievalStrategy{{Type: models.StrategySemantic}}}, f.contexts, nil
}

type fakeCompiler struct {
	results []*models.BuildResult
	builds  int
}

func (f *fakeCompiler) Build(context.Context, string) (*models.BuildResult, error) {
	f.builds++
	if len(f.results) == 0 {
		return &models.BuildResult{Success: true}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

type fakeHosting struct {
	created []hosting.PullRequest
}

func (f *fakeHosting) CreatePullRequest(_ context.Context, _ string, pr hosting.PullRequest) (*hosting.CreatedPR, error) {
	f.created = append(f.created, pr)
	return &hosting.CreatedPR{URL: "https://github.com/acme/billing/pull/7", Number: 7}, nil
}

// --- fixtures --------------------------------------------------------------

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func analyzerJSON(t *testing.T) string {
	return mustJSON(t, analyzerReply{TaskType: "feature", Domain: "billing", Summary: "add a refund endpoint"})
}

func patchJSON(t *testing.T) string {
	return mustJSON(t, patchEnvelope{
		BranchName:  "refund-endpoint",
		Explanation: "adds a refund endpoint to PaymentController",
		FileEdits: []fileEditEnvelope{
			{Path: "src/main/java/com/acme/PaymentController.java", Op: "modify", Content: "class PaymentController {}"},
		},
		TestsAdded: []fileEditEnvelope{
			{Path: "src/test/java/com/acme/PaymentControllerTest.java", Content: "class PaymentControllerTest {}"},
		},
	})
}

func fixJSON(t *testing.T) string {
	return mustJSON(t, patchEnvelope{
		Explanation: "adds the missing import",
		FileEdits: []fileEditEnvelope{
			{Path: "src/main/java/com/acme/PaymentController.java", Op: "modify", Content: "import com.acme.Refund; class PaymentController {}"},
		},
	})
}

type harness struct {
	provider    *scriptedProvider
	persistence *fakePersistence
	notifier    *fakeNotifier
	workspaces  *fakeWorkspaces
	indexer     *fakeIndexer
	retriever   *fakeRetriever
	compiler    *fakeCompiler
	hosting     *fakeHosting
	runtime     *Runtime
}

func newHarness(replies map[string][]string) *harness {
	h := &harness{
		provider:    &scriptedProvider{replies: replies},
		persistence: &fakePersistence{},
		notifier:    &fakeNotifier{},
		workspaces:  &fakeWorkspaces{wc: &fakeWorkingCopy{dir: "/work/c1", branch: "main"}},
		indexer:     &fakeIndexer{},
		retriever:   &fakeRetriever{contexts: []models.CodeContext{{ID: "pay-svc", FilePath: "PaymentService.java", Content: "class PaymentService {}"}}},
		compiler:    &fakeCompiler{},
		hosting:     &fakeHosting{},
	}
	h.runtime = NewRuntime(&Services{
		Provider:    h.provider,
		Retrieval:   h.retriever,
		Workspaces:  h.workspaces,
		Indexer:     h.indexer,
		Compiler:    h.compiler,
		Hosting:     h.hosting,
		Persistence: h.persistence,
		Notifier:    h.notifier,
		BuildCfg:    config.BuildConfig{MaxAttempts: 3},
		Logger:      slog.Default(),
	})
	return h
}

func initialState(mode models.Mode) *models.WorkflowState {
	s := &models.WorkflowState{
		ConversationID: "c1",
		RepoURL:        "https://github.com/acme/billing",
		Mode:           mode,
		Status:         models.StatusRunning,
	}
	return s.AppendMessage(models.RoleUser, "Add a refund endpoint")
}

// --- tests -----------------------------------------------------------------

func TestRun_MaintainHappyPath(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {patchJSON(t)},
	})

	final, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Equal(t, "https://github.com/acme/billing/pull/7", final.PRURL)
	assert.Equal(t, "feat/refund-endpoint", final.BranchName)
	assert.Equal(t, 1, final.BuildAttempts)

	assert.Equal(t, 1, h.indexer.syncs)
	assert.Equal(t, 1, h.retriever.calls)
	assert.Equal(t, 1, h.compiler.builds)
	require.Len(t, h.hosting.created, 1)
	assert.Equal(t, "feat/refund-endpoint", h.hosting.created[0].Head)
	assert.Equal(t, "main", h.hosting.created[0].Base)

	assert.True(t, h.notifier.completed)
	last := h.notifier.published[len(h.notifier.published)-1]
	assert.Equal(t, events.StatusComplete, last.Status)
}

func TestRun_SnapshotSequenceIsStrictlyIncreasing(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {patchJSON(t)},
	})

	_, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	require.NotEmpty(t, h.persistence.snapshots)
	for i := 1; i < len(h.persistence.snapshots); i++ {
		assert.Greater(t, h.persistence.snapshots[i].sequence, h.persistence.snapshots[i-1].sequence)
	}
	final := h.persistence.snapshots[len(h.persistence.snapshots)-1]
	assert.Equal(t, models.StatusCompleted, final.status)
}

func TestRun_ScaffoldSkipsRetrieval(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {mustJSON(t, analyzerReply{TaskType: "scaffold", Domain: "inventory", Summary: "scaffold inventory service"})},
		models.AgentCodeGenerator: {mustJSON(t, patchEnvelope{
			BranchName:  "init-project",
			Explanation: "initial project skeleton",
			FileEdits: []fileEditEnvelope{
				{Path: "pom.xml", Op: "create", Content: "<project/>"},
				{Path: "src/main/java/com/acme/inventory/Application.java", Op: "create", Content: "class Application {}"},
			},
		})},
	})

	final, err := h.runtime.Run(context.Background(), initialState(models.ModeScaffold))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Equal(t, "feat/init-project", final.BranchName)
	assert.Zero(t, h.retriever.calls)
	assert.Zero(t, h.indexer.syncs, "scaffold has nothing to index")
}

func TestRun_SuspendsForClarification(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {mustJSON(t, analyzerReply{Question: "Which payment provider should the refund target?"})},
	})

	state, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusAwaitingUser, state.Status)
	assert.Equal(t, models.AgentRequirementAnalyzer, state.CurrentAgent)
	assert.Contains(t, h.persistence.statuses, models.StatusAwaitingUser)

	last := h.notifier.published[len(h.notifier.published)-1]
	assert.Equal(t, events.StatusPartial, last.Status)
	assert.Contains(t, last.Message, "payment provider")
}

func TestRun_ResumeReentersSameAgent(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {
			mustJSON(t, analyzerReply{Question: "Which payment provider?"}),
			analyzerJSON(t),
		},
		models.AgentCodeGenerator: {patchJSON(t)},
	})

	suspended, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)
	require.Equal(t, models.StatusAwaitingUser, suspended.Status)

	resumed := suspended.AppendMessage(models.RoleUser, "Stripe")
	final, err := h.runtime.Run(context.Background(), resumed)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, final.Status)
	// The working copy was cloned once; the resume reused it.
	assert.Len(t, h.workspaces.cloned, 1)
	assert.Equal(t, 1, h.indexer.syncs)
}

func TestRun_BuildRepairConverges(t *testing.T) {
	failing := &models.BuildResult{
		Success: false,
		RawLog:  "[ERROR] /w/PaymentController.java:[10,5] cannot find symbol",
		Errors: []models.BuildError{
			{File: "PaymentController.java", Line: 10, Column: 5, Message: "cannot find symbol", Kind: models.ErrorKindSymbolNotFound},
		},
	}
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {patchJSON(t)},
		models.AgentFixGenerator:        {fixJSON(t)},
	})
	h.compiler.results = []*models.BuildResult{failing, {Success: true}}

	final, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Equal(t, 2, final.BuildAttempts)
	assert.Equal(t, []int{1, 2}, h.persistence.attempts)
	// The corrective patch rides the original branch.
	require.Len(t, h.workspaces.wc.branches, 1)
}

func TestRun_NoProgressShortCircuitsToFail(t *testing.T) {
	failing := &models.BuildResult{
		Success: false,
		Errors: []models.BuildError{
			{File: "PaymentController.java", Line: 10, Column: 5, Message: "cannot find symbol", Kind: models.ErrorKindSymbolNotFound},
		},
	}
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {patchJSON(t)},
		models.AgentFixGenerator:        {fixJSON(t), fixJSON(t)},
	})
	h.compiler.results = []*models.BuildResult{failing, failing.Clone()}

	final, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, final.Status)
	assert.Equal(t, 2, final.BuildAttempts, "identical errors twice stop the loop before the budget")
	assert.NotNil(t, final.BuildResult)
	assert.True(t, h.notifier.failed)
	assert.Contains(t, h.persistence.lastError, "identical errors")
}

func TestRun_AttemptBudgetExhausted(t *testing.T) {
	mk := func(line int) *models.BuildResult {
		return &models.BuildResult{
			Success: false,
			Errors: []models.BuildError{
				{File: "PaymentController.java", Line: line, Column: 5, Message: "cannot find symbol", Kind: models.ErrorKindSymbolNotFound},
			},
		}
	}
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {patchJSON(t)},
		models.AgentFixGenerator:        {fixJSON(t), fixJSON(t), fixJSON(t)},
	})
	// Different errors each time: progress is being made, but never enough.
	h.compiler.results = []*models.BuildResult{mk(10), mk(11), mk(12)}

	final, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, final.Status)
	assert.Equal(t, 3, final.BuildAttempts)
	require.NotNil(t, final.BuildResult)
	assert.Equal(t, 12, final.BuildResult.Errors[0].Line)
}

func TestRun_CancellationAtTransitionBoundary(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	final, err := h.runtime.Run(ctx, initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, final.Status)
	assert.Zero(t, h.compiler.builds, "no further agents after cancellation")
	require.NotEmpty(t, h.persistence.snapshots)
	assert.Equal(t, models.StatusCancelled, h.persistence.snapshots[len(h.persistence.snapshots)-1].status)

	last := h.notifier.published[len(h.notifier.published)-1]
	assert.True(t, last.Status.Terminal())
}

func TestRun_DeadlineExpiryFailsInsteadOfCancelling(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
	})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	final, err := h.runtime.Run(ctx, initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, final.Status)
	assert.Zero(t, h.compiler.builds)
}

func TestRun_MalformedPatchJSONGetsOneCorrectiveReprompt(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {"sorry, here is the patch: {broken", patchJSON(t)},
	})

	final, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, final.Status)
	// Two code-generator calls: the broken reply plus the corrective one.
	count := 0
	for _, agent := range h.provider.calls {
		if agent == models.AgentCodeGenerator {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestRun_InvalidPatchFailsWorkflow(t *testing.T) {
	empty := mustJSON(t, patchEnvelope{Explanation: "nothing to do"})
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {empty, empty},
	})

	final, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, final.Status)
	assert.True(t, h.notifier.failed)
}

func TestRun_TranscriptMirrorsAssistantMessages(t *testing.T) {
	h := newHarness(map[string][]string{
		models.AgentRequirementAnalyzer: {analyzerJSON(t)},
		models.AgentCodeGenerator:       {patchJSON(t)},
	})

	_, err := h.runtime.Run(context.Background(), initialState(models.ModeMaintain))
	require.NoError(t, err)

	assert.Contains(t, h.persistence.transcript, "assistant: add a refund endpoint")
	assert.Contains(t, h.persistence.transcript, "assistant: adds a refund endpoint to PaymentController")
}

func TestWorkflowState_SerializeRoundTrip(t *testing.T) {
	state := initialState(models.ModeMaintain)
	state.Analysis = &models.RequirementAnalysis{TaskType: "feature", Domain: "billing", Summary: "refunds"}
	state.BuildAttempts = 2
	state.LastErrorSignatures = []string{"A.java:1:2:SYMBOL_NOT_FOUND"}
	state.Scratch = map[string]string{"pending_question": "which provider?"}

	m, err := models.MarshalState(state)
	require.NoError(t, err)
	restored, err := models.UnmarshalState(m)
	require.NoError(t, err)

	m2, err := models.MarshalState(restored)
	require.NoError(t, err)
	assert.Equal(t, m, m2)
	assert.Equal(t, state.LastErrorSignatures, restored.LastErrorSignatures)
	assert.Equal(t, state.Scratch, restored.Scratch)
}

func TestBranchName(t *testing.T) {
	assert.Equal(t, "feat/refund-endpoint", branchName("Refund Endpoint", "feature", "c1"))
	assert.Equal(t, "fix/npe-in-checkout", branchName("npe-in-checkout", "bugfix", "c1"))
	assert.Equal(t, "feat/init-project", branchName("feat/init-project", "scaffold", "c1"))
	assert.Equal(t, "fix/0123abcd", branchName("", "bugfix", "0123abcd-rest"))
}
