package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON extracts the first JSON object from a model response and
// unmarshals it into v. Models routinely wrap JSON in markdown fences or
// prose; everything outside the outermost braces is ignored.
func decodeJSON(raw string, v any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return fmt.Errorf("invalid JSON in response: %w", err)
	}
	return nil
}

// validatePatch rejects patches that could not be applied: no edits at all,
// empty paths, or unknown ops. Path traversal is rejected again at apply
// time; this check exists so the corrective re-prompt can name the problem.
func validatePatch(p patchEnvelope) error {
	if len(p.FileEdits) == 0 {
		return fmt.Errorf("patch has no file_edits")
	}
	for _, e := range append(append([]fileEditEnvelope(nil), p.FileEdits...), p.TestsAdded...) {
		if e.Path == "" {
			return fmt.Errorf("patch contains an edit with an empty path")
		}
		switch e.Op {
		case "create", "modify", "delete", "":
		default:
			return fmt.Errorf("patch contains unknown op %q for %s", e.Op, e.Path)
		}
	}
	return nil
}

type fileEditEnvelope struct {
	Path    string `json:"path"`
	Op      string `json:"op"`
	Content string `json:"content"`
}

// patchEnvelope is the raw shape the model emits, validated before being
// promoted to models.Patch.
type patchEnvelope struct {
	BranchName  string             `json:"branch_name"`
	Explanation string             `json:"explanation"`
	FileEdits   []fileEditEnvelope `json:"file_edits"`
	TestsAdded  []fileEditEnvelope `json:"tests_added"`
}
