package models

import (
	"fmt"
	"sort"
)

// BuildErrorKind categorizes a structured compiler error.
type BuildErrorKind string

const (
	ErrorKindSymbolNotFound BuildErrorKind = "SYMBOL_NOT_FOUND"
	ErrorKindTypeMismatch   BuildErrorKind = "TYPE_MISMATCH"
	ErrorKindMissingImport  BuildErrorKind = "MISSING_IMPORT"
	ErrorKindSyntax         BuildErrorKind = "SYNTAX"
	ErrorKindUnknown        BuildErrorKind = "UNKNOWN"
)

// BuildError is one parsed compiler error line.
type BuildError struct {
	File    string         `json:"file"`
	Line    int            `json:"line"`
	Column  int            `json:"column"`
	Message string         `json:"message"`
	Kind    BuildErrorKind `json:"kind"`
}

// Signature is a stable identity for no-progress detection across attempts.
func (e BuildError) Signature() string {
	return fmt.Sprintf("%s:%d:%d:%s", e.File, e.Line, e.Column, e.Kind)
}

// BuildResult is the structured outcome of a compile attempt.
type BuildResult struct {
	Success    bool         `json:"success"`
	DurationMS int64        `json:"duration_ms"`
	RawLog     string       `json:"raw_log,omitempty"`
	Errors     []BuildError `json:"errors,omitempty"`
}

// Clone returns a deep copy of the result.
func (r *BuildResult) Clone() *BuildResult {
	out := *r
	out.Errors = append([]BuildError(nil), r.Errors...)
	return &out
}

// ErrorSignatures returns the sorted set of error signatures.
func (r *BuildResult) ErrorSignatures() []string {
	sigs := make([]string, 0, len(r.Errors))
	seen := make(map[string]bool, len(r.Errors))
	for _, e := range r.Errors {
		sig := e.Signature()
		if !seen[sig] {
			seen[sig] = true
			sigs = append(sigs, sig)
		}
	}
	sort.Strings(sigs)
	return sigs
}
