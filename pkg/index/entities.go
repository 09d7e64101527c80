package index

import (
	"strings"
	"unicode"

	"github.com/patchwright/patchwright/pkg/graph"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/parser"
)

// injectionAnnotations mark fields whose type is wired in by the DI
// container rather than constructed locally.
var injectionAnnotations = map[string]bool{
	"Autowired": true,
	"Inject":    true,
	"Resource":  true,
}

// ExtractGraph converts one parsed file into graph nodes and edges. Targets
// of inheritance, call, and dependency edges may live in other files; those
// edges are emitted anyway and dropped by the store when the endpoint is
// missing.
func ExtractGraph(repo string, file *parser.ParsedFile) ([]graph.Node, []graph.Edge) {
	var nodes []graph.Node
	var edges []graph.Edge

	nodes = append(nodes, graph.Node{
		ID:         repo,
		Label:      graph.LabelRepository,
		Repository: repo,
		Properties: map[string]any{"name": repo},
	})

	// Method name -> node ID across all types in this file, for call edges.
	methodIDs := map[string]string{}
	for _, typ := range file.Types {
		for _, m := range typ.Methods {
			methodIDs[m.Name] = models.EntityID(repo, typ.FQN+"#"+m.Signature, models.EntityMethod)
		}
	}

	for _, typ := range file.Types {
		typeID := models.EntityID(repo, typ.FQN, models.EntityType)
		nodes = append(nodes, graph.Node{
			ID:         typeID,
			Label:      graph.LabelType,
			Repository: repo,
			Properties: map[string]any{
				"name":      typ.Name,
				"fqn":       typ.FQN,
				"kind":      typ.Kind,
				"file_path": file.Path,
			},
		})

		for _, super := range typ.Extends {
			edges = append(edges, typeRef(repo, typeID, file, super, graph.RelExtends))
		}
		for _, iface := range typ.Implements {
			edges = append(edges, typeRef(repo, typeID, file, iface, graph.RelImplements))
		}
		nodes, edges = appendAnnotations(nodes, edges, repo, file, typeID, typ.Annotations)

		for _, imp := range file.Imports {
			if strings.HasPrefix(imp, "java.") || strings.HasSuffix(imp, "*") {
				continue
			}
			edges = append(edges, graph.Edge{
				FromID:     typeID,
				ToID:       models.EntityID(repo, imp, models.EntityType),
				Kind:       graph.RelTypeDependency,
				Repository: repo,
			})
		}

		for _, m := range typ.Methods {
			methodID := models.EntityID(repo, typ.FQN+"#"+m.Signature, models.EntityMethod)
			nodes = append(nodes, graph.Node{
				ID:         methodID,
				Label:      graph.LabelMethod,
				Repository: repo,
				Properties: map[string]any{
					"name":      m.Name,
					"fqn":       typ.FQN + "#" + m.Signature,
					"signature": m.Signature,
					"file_path": file.Path,
				},
			})
			edges = append(edges, graph.Edge{FromID: typeID, ToID: methodID, Kind: graph.RelDeclares, Repository: repo})
			nodes, edges = appendAnnotations(nodes, edges, repo, file, methodID, m.Annotations)

			if refersToType(m.ReturnType) {
				edges = append(edges, typeRef(repo, methodID, file, m.ReturnType, graph.RelReturns))
			}
			for _, p := range m.ParamTypes {
				if refersToType(p) {
					edges = append(edges, typeRef(repo, methodID, file, p, graph.RelAccepts))
				}
			}
			for _, ex := range m.Throws {
				edges = append(edges, typeRef(repo, methodID, file, ex, graph.RelThrows))
			}
			for _, called := range m.Calls {
				if target, ok := methodIDs[called]; ok && target != methodID {
					edges = append(edges, graph.Edge{FromID: methodID, ToID: target, Kind: graph.RelCalls, Repository: repo})
				}
			}
		}

		for _, f := range typ.Fields {
			fieldID := models.EntityID(repo, typ.FQN+"#"+f.Name, models.EntityField)
			nodes = append(nodes, graph.Node{
				ID:         fieldID,
				Label:      graph.LabelField,
				Repository: repo,
				Properties: map[string]any{
					"name":      f.Name,
					"fqn":       typ.FQN + "#" + f.Name,
					"type":      f.Type,
					"file_path": file.Path,
				},
			})
			edges = append(edges, graph.Edge{FromID: typeID, ToID: fieldID, Kind: graph.RelDeclares, Repository: repo})
			nodes, edges = appendAnnotations(nodes, edges, repo, file, fieldID, f.Annotations)

			if refersToType(f.Type) {
				kind := graph.RelUses
				for _, a := range f.Annotations {
					if injectionAnnotations[a] {
						kind = graph.RelInjects
						break
					}
				}
				edges = append(edges, typeRef(repo, typeID, file, f.Type, kind))
			}
		}
	}

	return nodes, edges
}

func appendAnnotations(nodes []graph.Node, edges []graph.Edge, repo string, file *parser.ParsedFile, fromID string, annotations []string) ([]graph.Node, []graph.Edge) {
	for _, a := range annotations {
		fqn := resolveType(file, a)
		annID := models.EntityID(repo, fqn, models.EntityAnnotation)
		nodes = append(nodes, graph.Node{
			ID:         annID,
			Label:      graph.LabelAnnotation,
			Repository: repo,
			Properties: map[string]any{"name": a, "fqn": fqn},
		})
		edges = append(edges, graph.Edge{FromID: fromID, ToID: annID, Kind: graph.RelAnnotatedBy, Repository: repo})
	}
	return nodes, edges
}

func typeRef(repo, fromID string, file *parser.ParsedFile, name string, kind graph.RelationshipKind) graph.Edge {
	return graph.Edge{
		FromID:     fromID,
		ToID:       models.EntityID(repo, resolveType(file, name), models.EntityType),
		Kind:       kind,
		Repository: repo,
	}
}

// resolveType maps a simple name to a fully-qualified one using the file's
// imports, defaulting to the file's own package.
func resolveType(file *parser.ParsedFile, name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	for _, imp := range file.Imports {
		if strings.HasSuffix(imp, "."+name) {
			return imp
		}
	}
	if file.Package == "" {
		return name
	}
	return file.Package + "." + name
}

// refersToType filters out primitives and void, which never become nodes.
func refersToType(name string) bool {
	if name == "" || name == "void" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}
