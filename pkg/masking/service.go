// Package masking scrubs credentials from text that leaves the service:
// API responses, stream events, and logged command output. Patterns are
// compiled once at startup; the service is stateless and safe for
// concurrent use.
package masking

import (
	"log/slog"

	"github.com/patchwright/patchwright/pkg/models"
)

// MaskingService applies credential masking to outbound text and workflow
// state. Created once at application startup (singleton).
type MaskingService struct {
	patterns    []*CompiledPattern
	codeMaskers []Masker
}

// NewMaskingService creates a masking service with compiled patterns and
// registered maskers. All patterns are compiled eagerly at creation time.
func NewMaskingService() *MaskingService {
	s := &MaskingService{}
	s.compileBuiltinPatterns()
	s.codeMaskers = append(s.codeMaskers, &GitURLMasker{})

	slog.Info("Masking service initialized",
		"builtin_patterns", len(builtinPatterns),
		"compiled_patterns", len(s.patterns),
		"code_maskers", len(s.codeMaskers))
	return s
}

// MaskText applies code-based maskers then the regex sweep to a string.
func (s *MaskingService) MaskText(content string) string {
	if content == "" {
		return content
	}

	masked := content

	// Phase 1: code-based maskers (structural awareness)
	for _, masker := range s.codeMaskers {
		if masker.AppliesTo(masked) {
			masked = masker.Mask(masked)
		}
	}

	// Phase 2: regex patterns (general sweep)
	for _, pattern := range s.patterns {
		masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
	}

	return masked
}

// MaskState returns a copy of the workflow state with every outbound text
// field scrubbed. The original is never mutated; callers hand the copy to
// the API layer.
func (s *MaskingService) MaskState(state *models.WorkflowState) *models.WorkflowState {
	if state == nil {
		return nil
	}

	out := state.Clone()
	out.RepoURL = s.MaskText(out.RepoURL)

	for i := range out.Messages {
		out.Messages[i].Content = s.MaskText(out.Messages[i].Content)
	}
	for k, v := range out.Scratch {
		out.Scratch[k] = s.MaskText(v)
	}
	if out.BuildResult != nil {
		out.BuildResult.RawLog = s.MaskText(out.BuildResult.RawLog)
		for i := range out.BuildResult.Errors {
			out.BuildResult.Errors[i].Message = s.MaskText(out.BuildResult.Errors[i].Message)
		}
	}
	if out.LastDecision != nil {
		out.LastDecision.Message = s.MaskText(out.LastDecision.Message)
	}
	return out
}
