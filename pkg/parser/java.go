package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// JavaParser is a line-oriented scanner for Java sources. It recognizes
// top-level type declarations, their annotations, inheritance clauses,
// fields, methods, and intra-method call sites. It does not attempt full
// grammar coverage; formatted production code parses fine, degenerate
// one-liner code may lose members.
type JavaParser struct{}

// NewJavaParser returns the built-in scanner.
func NewJavaParser() *JavaParser { return &JavaParser{} }

var (
	packageRe    = regexp.MustCompile(`^\s*package\s+([\w.]+)\s*;`)
	importRe     = regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.*]+)\s*;`)
	annotationRe     = regexp.MustCompile(`@(\w+)`)
	annotationLineRe = regexp.MustCompile(`^\s*(?:@\w+(?:\([^)]*\))?\s*)+$`)
	typeDeclRe   = regexp.MustCompile(`^\s*(?:(?:public|protected|private|final|abstract|static|sealed)\s+)*(class|interface|enum)\s+(\w+)`)
	methodRe     = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|abstract|synchronized|default)\s+)*(?:<[^>]+>\s+)?([\w.$]+(?:<.*>)?(?:\[\])*)\s+(\w+)\s*\((.*)\)\s*(?:throws\s+([\w.,\s]+?))?\s*[{;]`)
	ctorRe       = regexp.MustCompile(`^\s*(?:(?:public|private|protected)\s+)?(\w+)\s*\((.*)\)\s*(?:throws\s+([\w.,\s]+?))?\s*\{`)
	fieldRe      = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|transient|volatile)\s+)*([\w.$]+(?:<.*>)?(?:\[\])*)\s+(\w+)\s*(?:=.*)?;`)
	callRe       = regexp.MustCompile(`(\w+)\s*\(`)
)

var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "new": true, "super": true, "this": true, "throw": true,
	"synchronized": true, "assert": true,
}

func (p *JavaParser) Parse(_ context.Context, path string, content []byte) (*ParsedFile, error) {
	file := &ParsedFile{Path: path}
	lines := strings.Split(string(content), "\n")

	depth := 0
	inBlockComment := false
	var pendingAnnotations []string
	var current *ParsedType
	typeStart := -1
	methodStart := -1
	methodDepth := -1
	var currentMethod *ParsedMethod

	for i, raw := range lines {
		line := raw
		lineNo := i + 1

		if inBlockComment {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				line = line[idx+2:]
				inBlockComment = false
			} else {
				continue
			}
		}
		if idx := strings.Index(line, "/*"); idx >= 0 {
			if end := strings.Index(line[idx:], "*/"); end >= 0 {
				line = line[:idx] + line[idx+end+2:]
			} else {
				line = line[:idx]
				inBlockComment = true
			}
		}
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := packageRe.FindStringSubmatch(trimmed); m != nil {
			file.Package = m[1]
			continue
		}
		if m := importRe.FindStringSubmatch(trimmed); m != nil {
			file.Imports = append(file.Imports, m[1])
			continue
		}
		if annotationLineRe.MatchString(trimmed) {
			for _, m := range annotationRe.FindAllStringSubmatch(trimmed, -1) {
				pendingAnnotations = append(pendingAnnotations, m[1])
			}
			continue
		}

		startDepth := depth
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		// Top-level type declaration.
		if startDepth == 0 && current == nil {
			if m := typeDeclRe.FindStringSubmatch(trimmed); m != nil {
				current = &ParsedType{
					Kind:        strings.ToUpper(m[1]),
					Name:        m[2],
					Annotations: pendingAnnotations,
					StartLine:   lineNo,
				}
				pendingAnnotations = nil
				typeStart = i
				current.FQN = current.Name
				if file.Package != "" {
					current.FQN = file.Package + "." + current.Name
				}
				rest := trimmed[strings.Index(trimmed, m[2])+len(m[2]):]
				current.Extends = inheritanceClause(rest, "extends")
				current.Implements = inheritanceClause(rest, "implements")
				continue
			}
		}

		// Type body closed.
		if current != nil && depth == 0 && startDepth > 0 {
			current.EndLine = lineNo
			current.Source = strings.Join(lines[typeStart:i+1], "\n")
			file.Types = append(file.Types, *current)
			current = nil
			pendingAnnotations = nil
			continue
		}

		if current == nil {
			continue
		}

		// Method body content.
		if currentMethod != nil {
			currentMethod.Calls = appendCalls(currentMethod.Calls, trimmed, currentMethod.Name)
			if depth <= methodDepth {
				currentMethod.EndLine = lineNo
				currentMethod.Source = strings.Join(lines[methodStart:i+1], "\n")
				current.Methods = append(current.Methods, *currentMethod)
				currentMethod = nil
			}
			continue
		}

		// Members are declared one level inside the type body.
		if startDepth != 1 {
			continue
		}

		if m := methodRe.FindStringSubmatch(trimmed); m != nil && !controlKeywords[m[2]] {
			method := &ParsedMethod{
				ReturnType:  m[1],
				Name:        m[2],
				ParamTypes:  paramTypes(m[3]),
				Annotations: pendingAnnotations,
				StartLine:   lineNo,
			}
			if m[4] != "" {
				for _, t := range strings.Split(m[4], ",") {
					method.Throws = append(method.Throws, strings.TrimSpace(t))
				}
			}
			method.Signature = method.Name + "(" + strings.Join(method.ParamTypes, ",") + ")"
			pendingAnnotations = nil
			if strings.HasSuffix(trimmed, ";") || depth == startDepth {
				// Abstract or single-line body.
				method.EndLine = lineNo
				method.Source = raw
				method.Calls = appendCalls(nil, trimmed, method.Name)
				current.Methods = append(current.Methods, *method)
			} else {
				currentMethod = method
				methodStart = i
				methodDepth = startDepth
			}
			continue
		}

		if m := ctorRe.FindStringSubmatch(trimmed); m != nil && m[1] == current.Name {
			method := &ParsedMethod{
				Name:        m[1],
				ParamTypes:  paramTypes(m[2]),
				Annotations: pendingAnnotations,
				StartLine:   lineNo,
			}
			method.Signature = method.Name + "(" + strings.Join(method.ParamTypes, ",") + ")"
			pendingAnnotations = nil
			if depth == startDepth {
				method.EndLine = lineNo
				method.Source = raw
				current.Methods = append(current.Methods, *method)
			} else {
				currentMethod = method
				methodStart = i
				methodDepth = startDepth
			}
			continue
		}

		if m := fieldRe.FindStringSubmatch(trimmed); m != nil && isFieldLine(trimmed) {
			current.Fields = append(current.Fields, ParsedField{
				Type:        m[1],
				Name:        m[2],
				Annotations: pendingAnnotations,
				Line:        lineNo,
				Source:      raw,
			})
			pendingAnnotations = nil
			continue
		}
	}

	if current != nil {
		return nil, fmt.Errorf("unterminated type declaration %s in %s", current.Name, path)
	}
	return file, nil
}

// inheritanceClause extracts the comma-separated types after a keyword,
// stopping at the next clause keyword or the body brace.
func inheritanceClause(decl, keyword string) []string {
	idx := strings.Index(decl, keyword+" ")
	if idx < 0 {
		return nil
	}
	rest := decl[idx+len(keyword)+1:]
	for _, stop := range []string{" extends ", " implements ", "{"} {
		if j := strings.Index(rest, stop); j >= 0 {
			rest = rest[:j]
		}
	}
	var out []string
	for _, t := range splitTopLevel(rest) {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, stripGenerics(t))
		}
	}
	return out
}

// paramTypes extracts parameter type names from a parameter list.
func paramTypes(params string) []string {
	params = strings.TrimSpace(params)
	if params == "" {
		return nil
	}
	var out []string
	for _, p := range splitTopLevel(params) {
		parts := strings.Fields(strings.TrimSpace(p))
		if len(parts) < 2 {
			continue
		}
		// Last token is the parameter name; the type is everything before it
		// minus modifiers and annotations. Generic arguments may contain
		// spaces, so the type tokens are rejoined before trimming.
		typeTokens := parts[:len(parts)-1]
		var kept []string
		for _, tok := range typeTokens {
			if tok == "final" || strings.HasPrefix(tok, "@") {
				continue
			}
			kept = append(kept, tok)
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, stripGenerics(strings.Join(kept, "")))
	}
	return out
}

// splitTopLevel splits on commas that are not nested inside angle brackets.
func splitTopLevel(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func stripGenerics(t string) string {
	if i := strings.Index(t, "<"); i >= 0 {
		return t[:i]
	}
	return t
}

// isFieldLine rejects declarations whose parentheses precede any initializer,
// which distinguishes fields from method signatures.
func isFieldLine(line string) bool {
	paren := strings.Index(line, "(")
	if paren < 0 {
		return true
	}
	eq := strings.Index(line, "=")
	return eq >= 0 && eq < paren
}

func appendCalls(calls []string, line, selfName string) []string {
	for _, m := range callRe.FindAllStringSubmatch(line, -1) {
		name := m[1]
		if controlKeywords[name] || name == selfName {
			continue
		}
		seen := false
		for _, c := range calls {
			if c == name {
				seen = true
				break
			}
		}
		if !seen {
			calls = append(calls, name)
		}
	}
	return calls
}
