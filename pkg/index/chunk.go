package index

import (
	"fmt"
	"strings"

	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/parser"
	"github.com/patchwright/patchwright/pkg/vector"
)

// Chunk type values stored in vector metadata.
const (
	ChunkClass       = "CLASS"
	ChunkInterface   = "INTERFACE"
	ChunkEnum        = "ENUM"
	ChunkMethod      = "METHOD"
	ChunkConstructor = "CONSTRUCTOR"
	ChunkField       = "FIELD"
)

// ChunkTypeCode marks code chunks in vector metadata, distinguishing them
// from the per-repository metadata vector.
const ChunkTypeCode = "CODE_CHUNK"

// Chunk is one embeddable unit: a type declaration or one of its members.
type Chunk struct {
	ID          string
	ChunkType   string
	ClassName   string
	MethodName  string
	FilePath    string
	Content     string
	Description string
}

// EmbedText is the string sent to the embedder: the semantic description
// followed by the source text.
func (c Chunk) EmbedText() string {
	return c.Description + "\n\n" + c.Content
}

// Record converts the chunk plus its embedding into a vector record.
func (c Chunk) Record(repo string, embedding []float32) vector.Record {
	return vector.Record{
		ID:     c.ID,
		Values: embedding,
		Metadata: map[string]string{
			vector.MetaType:       ChunkTypeCode,
			vector.MetaRepoName:   repo,
			vector.MetaFilePath:   c.FilePath,
			vector.MetaChunkType:  c.ChunkType,
			vector.MetaClassName:  c.ClassName,
			vector.MetaMethodName: c.MethodName,
			vector.MetaContent:    c.Content,
		},
	}
}

// BuildChunks produces one parent chunk per top-level type plus one child
// chunk per method, constructor, and field.
func BuildChunks(repo string, file *parser.ParsedFile) []Chunk {
	var chunks []Chunk
	for _, typ := range file.Types {
		chunks = append(chunks, typeChunk(repo, file, typ))
		for _, m := range typ.Methods {
			chunks = append(chunks, methodChunk(repo, file, typ, m))
		}
		for _, f := range typ.Fields {
			chunks = append(chunks, fieldChunk(repo, file, typ, f))
		}
	}
	return chunks
}

func typeChunk(repo string, file *parser.ParsedFile, typ parser.ParsedType) Chunk {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s in package %s.", titleKind(typ.Kind), typ.Name, file.Package)
	if len(typ.Extends) > 0 {
		fmt.Fprintf(&b, " Extends %s.", strings.Join(typ.Extends, ", "))
	}
	if len(typ.Implements) > 0 {
		fmt.Fprintf(&b, " Implements %s.", strings.Join(typ.Implements, ", "))
	}
	if len(typ.Annotations) > 0 {
		fmt.Fprintf(&b, " Annotated with %s.", strings.Join(typ.Annotations, ", "))
	}
	fmt.Fprintf(&b, " Declares %d methods and %d fields.", len(typ.Methods), len(typ.Fields))

	return Chunk{
		ID:          models.EntityID(repo, typ.FQN, models.EntityType),
		ChunkType:   typ.Kind,
		ClassName:   typ.Name,
		FilePath:    file.Path,
		Content:     typ.Source,
		Description: b.String(),
	}
}

func methodChunk(repo string, file *parser.ParsedFile, typ parser.ParsedType, m parser.ParsedMethod) Chunk {
	chunkType := ChunkMethod
	if m.Name == typ.Name {
		chunkType = ChunkConstructor
	}

	var b strings.Builder
	if chunkType == ChunkConstructor {
		fmt.Fprintf(&b, "Constructor %s of %s %s.", m.Signature, strings.ToLower(typ.Kind), typ.FQN)
	} else {
		fmt.Fprintf(&b, "Method %s of %s %s returning %s.", m.Signature, strings.ToLower(typ.Kind), typ.FQN, m.ReturnType)
	}
	if len(m.Annotations) > 0 {
		fmt.Fprintf(&b, " Annotated with %s.", strings.Join(m.Annotations, ", "))
	}
	if len(m.Throws) > 0 {
		fmt.Fprintf(&b, " Throws %s.", strings.Join(m.Throws, ", "))
	}
	if len(m.Calls) > 0 {
		fmt.Fprintf(&b, " Calls %s.", strings.Join(m.Calls, ", "))
	}

	return Chunk{
		ID:          models.EntityID(repo, typ.FQN+"#"+m.Signature, models.EntityMethod),
		ChunkType:   chunkType,
		ClassName:   typ.Name,
		MethodName:  m.Name,
		FilePath:    file.Path,
		Content:     m.Source,
		Description: b.String(),
	}
}

func fieldChunk(repo string, file *parser.ParsedFile, typ parser.ParsedType, f parser.ParsedField) Chunk {
	var b strings.Builder
	fmt.Fprintf(&b, "Field %s of type %s in %s %s.", f.Name, f.Type, strings.ToLower(typ.Kind), typ.FQN)
	if len(f.Annotations) > 0 {
		fmt.Fprintf(&b, " Annotated with %s.", strings.Join(f.Annotations, ", "))
	}

	return Chunk{
		ID:          models.EntityID(repo, typ.FQN+"#"+f.Name, models.EntityField),
		ChunkType:   ChunkField,
		ClassName:   typ.Name,
		MethodName:  f.Name,
		FilePath:    file.Path,
		Content:     f.Source,
		Description: b.String(),
	}
}

func titleKind(kind string) string {
	switch kind {
	case parser.KindInterface:
		return "Interface"
	case parser.KindEnum:
		return "Enum"
	default:
		return "Class"
	}
}
