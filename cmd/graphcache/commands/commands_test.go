package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphcache/internal/domain"
)

func TestBuildGraph_FromImportDocument(t *testing.T) {
	var doc importDocument
	require.NoError(t, json.Unmarshal([]byte(`{
		"nodes": [
			{"id": "n1", "label": "Device", "properties": {"port": 22}},
			{"id": "n2", "label": "Service"}
		],
		"edges": [
			{"source": "n1", "target": "n2", "relation": "hosts"}
		]
	}`), &doc))

	g, err := buildGraph("imported", doc)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	node, err := g.GetNode("n1")
	require.NoError(t, err)
	port, ok := node.Property("port")
	require.True(t, ok)
	f, _ := port.AsNumber()
	assert.Equal(t, float64(22), f)
}

func TestBuildGraph_RejectsInvalidDocuments(t *testing.T) {
	_, err := buildGraph("x", importDocument{
		Nodes: []importNode{{ID: "n1", Label: "A"}, {ID: "n1", Label: "B"}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)

	_, err = buildGraph("x", importDocument{
		Nodes: []importNode{{ID: "n1", Label: "A"}},
		Edges: []importEdge{{Source: "n1", Target: "ghost", Relation: "rel"}},
	})
	assert.ErrorIs(t, err, domain.ErrDanglingReference)
}
