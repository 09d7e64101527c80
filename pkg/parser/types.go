// Package parser defines the source-parser contract consumed by the indexer
// and ships a lightweight Java scanner good enough for chunking and entity
// extraction. A full compiler-grade parser can be plugged in behind the same
// interface.
package parser

import "context"

// Type kinds produced by the scanner.
const (
	KindClass     = "CLASS"
	KindInterface = "INTERFACE"
	KindEnum      = "ENUM"
)

// ParsedFile is the structural view of one source file.
type ParsedFile struct {
	Path    string
	Package string
	Imports []string
	Types   []ParsedType
}

// ParsedType is a top-level class, interface, or enum declaration.
type ParsedType struct {
	Kind        string
	Name        string
	FQN         string
	Annotations []string
	Extends     []string
	Implements  []string
	StartLine   int
	EndLine     int
	Source      string
	Methods     []ParsedMethod
	Fields      []ParsedField
}

// ParsedMethod is a method or constructor declaration.
type ParsedMethod struct {
	Name        string
	Signature   string
	ReturnType  string
	ParamTypes  []string
	Throws      []string
	Annotations []string
	Calls       []string
	StartLine   int
	EndLine     int
	Source      string
}

// ParsedField is a field declaration.
type ParsedField struct {
	Name        string
	Type        string
	Annotations []string
	Line        int
	Source      string
}

// SourceParser turns a source file into its structural view.
type SourceParser interface {
	Parse(ctx context.Context, path string, content []byte) (*ParsedFile, error)
}
