package graph

import "fmt"

// Direction selects which end of the relationship the anchor node sits on.
type Direction string

const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// NeighborQuery builds the parameterized one-hop traversal query. The
// relationship kind is the only value spliced into the query text, and it is
// validated against the closed set first; everything else travels as the $id
// parameter.
func NeighborQuery(kind RelationshipKind, dir Direction) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelationship, kind)
	}
	switch dir {
	case DirectionOut:
		return fmt.Sprintf(
			"MATCH (a {id: $id})-[:%s]->(b) RETURN b.id AS id, b.label AS label, b.fqn AS fqn, b.file_path AS file_path", kind), nil
	case DirectionIn:
		return fmt.Sprintf(
			"MATCH (a {id: $id})<-[:%s]-(b) RETURN b.id AS id, b.label AS label, b.fqn AS fqn, b.file_path AS file_path", kind), nil
	default:
		return "", fmt.Errorf("graph: unknown direction %q", dir)
	}
}
