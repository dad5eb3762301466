package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphcache/internal/domain"
)

func TestGraph_AddNode_RejectsDuplicateID(t *testing.T) {
	g, err := domain.NewGraph("test")
	require.NoError(t, err)

	require.NoError(t, g.AddNode(domain.MustNewNode("n1", "Device", nil)))

	err = g.AddNode(domain.MustNewNode("n1", "Service", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)

	// The first node wins nothing: the aggregate is unchanged except
	// that the original node is still there.
	node, err := g.GetNode("n1")
	require.NoError(t, err)
	assert.Equal(t, "Device", node.Label())
	assert.Equal(t, 1, g.NodeCount())
}

func TestGraph_AddEdge_RejectsDanglingEndpoints(t *testing.T) {
	g, err := domain.NewGraph("test")
	require.NoError(t, err)
	require.NoError(t, g.AddNode(domain.MustNewNode("n1", "Device", nil)))

	err = g.AddEdge(domain.MustNewEdge("n1", "ghost", "connects", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDanglingReference)

	var dangling *domain.DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, "ghost", dangling.MissingID)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_AddEdge_AllowsSelfLoopsAndParallelEdges(t *testing.T) {
	g, err := domain.NewGraph("test")
	require.NoError(t, err)
	require.NoError(t, g.AddNode(domain.MustNewNode("n1", "Device", nil)))
	require.NoError(t, g.AddNode(domain.MustNewNode("n2", "Device", nil)))

	require.NoError(t, g.AddEdge(domain.MustNewEdge("n1", "n1", "monitors", nil)))
	require.NoError(t, g.AddEdge(domain.MustNewEdge("n1", "n2", "connects", nil)))
	require.NoError(t, g.AddEdge(domain.MustNewEdge("n1", "n2", "depends_on", nil)))

	assert.Equal(t, 3, g.EdgeCount())
}

func TestGraph_SelfLoopPolicy(t *testing.T) {
	g, err := domain.NewGraphWithPolicy("strict", domain.NamespacePolicy{DisallowSelfLoops: true})
	require.NoError(t, err)
	require.NoError(t, g.AddNode(domain.MustNewNode("n1", "Device", nil)))

	err = g.AddEdge(domain.MustNewEdge("n1", "n1", "monitors", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSelfLoop)
}

func TestGraph_RemoveNode_FailsWhileReferenced(t *testing.T) {
	g := buildTriangle(t)

	err := g.RemoveNode("n2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNodeInUse)

	var inUse *domain.NodeInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, 2, inUse.EdgeCount)
	assert.True(t, g.HasNode("n2"))
}

func TestGraph_RemoveNodeCascade(t *testing.T) {
	g := buildTriangle(t)

	require.NoError(t, g.RemoveNodeCascade("n2"))

	assert.False(t, g.HasNode("n2"))
	assert.Equal(t, 2, g.NodeCount())
	for _, edge := range g.Edges() {
		assert.NotEqual(t, "n2", edge.SourceID())
		assert.NotEqual(t, "n2", edge.TargetID())
	}
}

func TestGraph_RemoveNode_Unreferenced(t *testing.T) {
	g, err := domain.NewGraph("test")
	require.NoError(t, err)
	require.NoError(t, g.AddNode(domain.MustNewNode("n1", "Device", nil)))

	require.NoError(t, g.RemoveNode("n1"))
	assert.Equal(t, 0, g.NodeCount())

	err = g.RemoveNode("n1")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestReconstructGraph_ValidatesStoredData(t *testing.T) {
	nodes := []*domain.Node{
		domain.MustNewNode("n1", "Device", nil),
		domain.MustNewNode("n2", "Device", nil),
	}
	edges := []domain.Edge{
		domain.MustNewEdge("n1", "n2", "connects", nil),
	}

	g, err := domain.ReconstructGraph("test", nodes, edges, domain.NamespacePolicy{})
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestReconstructGraph_SurfacesCorruption(t *testing.T) {
	nodes := []*domain.Node{domain.MustNewNode("n1", "Device", nil)}
	edges := []domain.Edge{domain.MustNewEdge("n1", "missing", "connects", nil)}

	_, err := domain.ReconstructGraph("test", nodes, edges, domain.NamespacePolicy{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDanglingReference)

	dup := []*domain.Node{
		domain.MustNewNode("n1", "Device", nil),
		domain.MustNewNode("n1", "Service", nil),
	}
	_, err = domain.ReconstructGraph("test", dup, nil, domain.NamespacePolicy{})
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)
}

func TestValidateStructure_DeterministicOrder(t *testing.T) {
	// An input with both a duplicate ID and a dangling edge must always
	// fail on the duplicate: duplicates are checked first.
	nodes := []*domain.Node{
		domain.MustNewNode("n1", "Device", nil),
		domain.MustNewNode("n1", "Device", nil),
	}
	edges := []domain.Edge{domain.MustNewEdge("n1", "ghost", "connects", nil)}

	for i := 0; i < 20; i++ {
		err := domain.ValidateStructure(nodes, edges, domain.NamespacePolicy{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDuplicateNode)
	}
}

func TestGraph_Equal_IgnoresInsertionOrder(t *testing.T) {
	props := domain.PropertyBag{"weight": domain.Number(2)}

	a, err := domain.NewGraph("test")
	require.NoError(t, err)
	require.NoError(t, a.AddNode(domain.MustNewNode("n1", "Device", props)))
	require.NoError(t, a.AddNode(domain.MustNewNode("n2", "Device", nil)))
	require.NoError(t, a.AddEdge(domain.MustNewEdge("n1", "n2", "connects", props)))
	require.NoError(t, a.AddEdge(domain.MustNewEdge("n2", "n1", "connects", nil)))

	b, err := domain.NewGraph("test")
	require.NoError(t, err)
	require.NoError(t, b.AddNode(domain.MustNewNode("n2", "Device", nil)))
	require.NoError(t, b.AddNode(domain.MustNewNode("n1", "Device", props)))
	require.NoError(t, b.AddEdge(domain.MustNewEdge("n2", "n1", "connects", nil)))
	require.NoError(t, b.AddEdge(domain.MustNewEdge("n1", "n2", "connects", props)))

	assert.True(t, a.Equal(b))

	require.NoError(t, b.AddEdge(domain.MustNewEdge("n1", "n2", "connects", props)))
	assert.False(t, a.Equal(b), "extra parallel edge must break multiset equality")
}

func TestGraph_Equal_TreatsNilAndEmptyBagsAlike(t *testing.T) {
	withNil := domain.MustNewEdge("n1", "n2", "connects", nil)
	withEmpty := domain.MustNewEdge("n1", "n2", "connects", domain.PropertyBag{})
	require.True(t, withNil.Equal(withEmpty))

	build := func(bag domain.PropertyBag) *domain.Graph {
		g, err := domain.NewGraph("test")
		require.NoError(t, err)
		require.NoError(t, g.AddNode(domain.MustNewNode("n1", "Device", nil)))
		require.NoError(t, g.AddNode(domain.MustNewNode("n2", "Device", nil)))
		require.NoError(t, g.AddEdge(domain.MustNewEdge("n1", "n2", "connects", bag)))
		return g
	}

	a := build(nil)
	b := build(domain.PropertyBag{})
	assert.True(t, a.Equal(b), "graphs with Equal edges must be Equal")
	assert.True(t, b.Equal(a))
}

func TestGraph_EmptyGraphIsLegal(t *testing.T) {
	g, err := domain.NewGraph("empty")
	require.NoError(t, err)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.NoError(t, g.Validate())
}

func TestNewGraph_RequiresGraphType(t *testing.T) {
	_, err := domain.NewGraph("")
	assert.ErrorIs(t, err, domain.ErrEmptyGraphType)
}

func TestNode_AccessorsCopyProperties(t *testing.T) {
	node := domain.MustNewNode("n1", "Device", domain.PropertyBag{"k": domain.String("v")})

	props := node.Properties()
	props["k"] = domain.String("mutated")

	value, ok := node.Property("k")
	require.True(t, ok)
	s, _ := value.AsString()
	assert.Equal(t, "v", s)
}

func TestNewEdge_Validation(t *testing.T) {
	_, err := domain.NewEdge("", "n2", "connects", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyEndpoint)

	_, err = domain.NewEdge("n1", "n2", "", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyRelation)
}

// buildTriangle returns a graph with n1->n2->n3 plus the namespace "test".
func buildTriangle(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph("test")
	require.NoError(t, err)
	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, g.AddNode(domain.MustNewNode(id, "Device", nil)))
	}
	require.NoError(t, g.AddEdge(domain.MustNewEdge("n1", "n2", "rel", nil)))
	require.NoError(t, g.AddEdge(domain.MustNewEdge("n2", "n3", "rel", nil)))
	return g
}
