package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/graph"
	"github.com/patchwright/patchwright/pkg/parser"
)

const controllerSource = `package com.acme.billing;

import com.acme.billing.InvoiceService;
import org.springframework.web.bind.annotation.RestController;

@RestController
public class InvoiceController {

    @Autowired
    private InvoiceService service;

    public Invoice get(String id) {
        return lookup(id);
    }

    private Invoice lookup(String id) {
        return service.find(id);
    }
}
`

func parsedController(t *testing.T) *parser.ParsedFile {
	t.Helper()
	file, err := parser.NewJavaParser().Parse(context.Background(),
		"src/main/java/com/acme/billing/InvoiceController.java", []byte(controllerSource))
	require.NoError(t, err)
	return file
}

func TestBuildChunks_ParentAndChildren(t *testing.T) {
	chunks := BuildChunks("billing", parsedController(t))
	require.Len(t, chunks, 4)

	parent := chunks[0]
	assert.Equal(t, "CLASS", parent.ChunkType)
	assert.Equal(t, "InvoiceController", parent.ClassName)
	assert.Contains(t, parent.Description, "Class InvoiceController in package com.acme.billing")
	assert.Contains(t, parent.Description, "Annotated with RestController")
	assert.Contains(t, parent.Description, "Declares 2 methods and 1 fields")

	var kinds []string
	ids := map[string]bool{}
	for _, c := range chunks {
		kinds = append(kinds, c.ChunkType)
		assert.False(t, ids[c.ID], "chunk IDs must be unique")
		ids[c.ID] = true
		assert.Equal(t, "src/main/java/com/acme/billing/InvoiceController.java", c.FilePath)
	}
	assert.Equal(t, []string{"CLASS", "METHOD", "METHOD", "FIELD"}, kinds)
}

func TestBuildChunks_DescriptionsMentionCalls(t *testing.T) {
	chunks := BuildChunks("billing", parsedController(t))

	var get Chunk
	for _, c := range chunks {
		if c.MethodName == "get" {
			get = c
		}
	}
	require.NotEmpty(t, get.ID)
	assert.Contains(t, get.Description, "returning Invoice")
	assert.Contains(t, get.Description, "Calls lookup")
}

func TestBuildChunks_StableIDs(t *testing.T) {
	a := BuildChunks("billing", parsedController(t))
	b := BuildChunks("billing", parsedController(t))
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}

	other := BuildChunks("orders", parsedController(t))
	assert.NotEqual(t, a[0].ID, other[0].ID, "IDs are repository-scoped")
}

func TestExtractGraph_DeclaresAndAnnotations(t *testing.T) {
	nodes, edges := ExtractGraph("billing", parsedController(t))

	labels := map[graph.NodeLabel]int{}
	for _, n := range nodes {
		labels[n.Label]++
	}
	assert.Equal(t, 1, labels[graph.LabelRepository])
	assert.Equal(t, 1, labels[graph.LabelType])
	assert.Equal(t, 2, labels[graph.LabelMethod])
	assert.Equal(t, 1, labels[graph.LabelField])
	assert.GreaterOrEqual(t, labels[graph.LabelAnnotation], 2)

	kinds := map[graph.RelationshipKind]int{}
	for _, e := range edges {
		require.True(t, e.Kind.Valid())
		kinds[e.Kind]++
	}
	// Type declares two methods and one field.
	assert.Equal(t, 3, kinds[graph.RelDeclares])
	// get calls lookup.
	assert.Equal(t, 1, kinds[graph.RelCalls])
	// The @Autowired field injects InvoiceService.
	assert.Equal(t, 1, kinds[graph.RelInjects])
	assert.GreaterOrEqual(t, kinds[graph.RelAnnotatedBy], 2)
}
