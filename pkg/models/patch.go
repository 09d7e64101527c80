package models

// FileOp enumerates patch file operations.
type FileOp string

const (
	OpCreate FileOp = "create"
	OpModify FileOp = "modify"
	OpDelete FileOp = "delete"
)

// FileEdit is one file-level change in a patch.
type FileEdit struct {
	Path    string `json:"path"`
	Op      FileOp `json:"op"`
	Content string `json:"content,omitempty"`
}

// Patch is the LLM-emitted set of file edits targeting a branch.
type Patch struct {
	BranchName  string     `json:"branch_name"`
	FileEdits   []FileEdit `json:"file_edits"`
	TestsAdded  []FileEdit `json:"tests_added,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
}

// Clone returns a deep copy of the patch.
func (p *Patch) Clone() *Patch {
	out := *p
	out.FileEdits = append([]FileEdit(nil), p.FileEdits...)
	out.TestsAdded = append([]FileEdit(nil), p.TestsAdded...)
	return &out
}
