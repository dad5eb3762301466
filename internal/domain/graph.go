// Package domain holds the in-memory model of a cached knowledge graph:
// the Graph aggregate, its Node entities and Edge value objects, the
// property bag attached to both, and the structural validator shared
// with the persistence layer.
package domain

// Graph is the aggregate root for one namespace's knowledge graph. It
// keeps nodes and edges as flat collections keyed by ID (arena style),
// so cycles and parallel edges are trivially representable, and it
// rejects structurally invalid mutation at the earliest point.
type Graph struct {
	graphType string
	nodes     map[string]*Node
	order     []string // node insertion order, for deterministic iteration
	edges     []Edge
	policy    NamespacePolicy
}

// NewGraph creates an empty graph for a namespace with the default policy.
func NewGraph(graphType string) (*Graph, error) {
	return NewGraphWithPolicy(graphType, NamespacePolicy{})
}

// NewGraphWithPolicy creates an empty graph with an explicit namespace policy.
func NewGraphWithPolicy(graphType string, policy NamespacePolicy) (*Graph, error) {
	if graphType == "" {
		return nil, ErrEmptyGraphType
	}
	return &Graph{
		graphType: graphType,
		nodes:     make(map[string]*Node),
		policy:    policy,
	}, nil
}

// ReconstructGraph rebuilds an aggregate from flat node and edge
// collections, running the full structural validation. The repository's
// load path uses it so a corrupted snapshot surfaces as an error here
// rather than as a silently inconsistent in-memory graph.
func ReconstructGraph(graphType string, nodes []*Node, edges []Edge, policy NamespacePolicy) (*Graph, error) {
	g, err := NewGraphWithPolicy(graphType, policy)
	if err != nil {
		return nil, err
	}
	if err := ValidateStructure(nodes, edges, policy); err != nil {
		return nil, err
	}
	for _, node := range nodes {
		g.nodes[node.ID()] = node
		g.order = append(g.order, node.ID())
	}
	g.edges = make([]Edge, len(edges))
	copy(g.edges, edges)
	return g, nil
}

// GraphType returns the namespace key this graph belongs to.
func (g *Graph) GraphType() string {
	return g.graphType
}

// Policy returns the namespace policy in effect for this graph.
func (g *Graph) Policy() NamespacePolicy {
	return g.policy
}

// AddNode adds a node to the graph. Adding a second node with an
// existing ID fails with a DuplicateNodeError; there is no silent
// overwrite.
func (g *Graph) AddNode(node *Node) error {
	if node == nil {
		return ErrEmptyNodeID
	}
	if _, exists := g.nodes[node.ID()]; exists {
		return &DuplicateNodeError{NodeID: node.ID()}
	}
	g.nodes[node.ID()] = node
	g.order = append(g.order, node.ID())
	return nil
}

// AddEdge appends an edge. Both endpoints must already be present in
// the node set at the time of the call.
func (g *Graph) AddEdge(edge Edge) error {
	ids := make(map[string]struct{}, 2)
	if _, ok := g.nodes[edge.SourceID()]; ok {
		ids[edge.SourceID()] = struct{}{}
	}
	if _, ok := g.nodes[edge.TargetID()]; ok {
		ids[edge.TargetID()] = struct{}{}
	}
	if err := checkEdgeAgainst(ids, edge, g.policy); err != nil {
		return err
	}
	g.edges = append(g.edges, edge)
	return nil
}

// RemoveNode removes a node that no edge references. Removing a node
// still referenced by edges fails with a NodeInUseError; cascading edge
// removal is the explicit opt-in RemoveNodeCascade, never implicit.
func (g *Graph) RemoveNode(id string) error {
	if _, exists := g.nodes[id]; !exists {
		return &NotFoundError{NodeID: id}
	}
	inUse := 0
	for _, edge := range g.edges {
		if edge.SourceID() == id || edge.TargetID() == id {
			inUse++
		}
	}
	if inUse > 0 {
		return &NodeInUseError{NodeID: id, EdgeCount: inUse}
	}
	g.deleteNode(id)
	return nil
}

// RemoveNodeCascade removes a node together with every edge that
// references it.
func (g *Graph) RemoveNodeCascade(id string) error {
	if _, exists := g.nodes[id]; !exists {
		return &NotFoundError{NodeID: id}
	}
	kept := g.edges[:0]
	for _, edge := range g.edges {
		if edge.SourceID() != id && edge.TargetID() != id {
			kept = append(kept, edge)
		}
	}
	g.edges = kept
	g.deleteNode(id)
	return nil
}

func (g *Graph) deleteNode(id string) {
	delete(g.nodes, id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// GetNode retrieves a node by ID.
func (g *Graph) GetNode(id string) (*Node, error) {
	node, exists := g.nodes[id]
	if !exists {
		return nil, &NotFoundError{NodeID: id}
	}
	return node, nil
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, exists := g.nodes[id]
	return exists
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of the graph's edge sequence.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Validate re-checks the whole aggregate against the structural
// invariants. The repository runs this once more before committing a
// save, as defense in depth against callers that bypassed the mutators.
func (g *Graph) Validate() error {
	return ValidateStructure(g.Nodes(), g.edges, g.policy)
}

// Equal reports whether two graphs hold the same node set and the same
// edge multiset, independent of insertion order.
func (g *Graph) Equal(other *Graph) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.graphType != other.graphType {
		return false
	}
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for id, node := range g.nodes {
		otherNode, ok := other.nodes[id]
		if !ok || !node.Equal(otherNode) {
			return false
		}
	}
	counts := make(map[string]int, len(g.edges))
	for _, edge := range g.edges {
		counts[edge.multisetKey()]++
	}
	for _, edge := range other.edges {
		counts[edge.multisetKey()]--
		if counts[edge.multisetKey()] < 0 {
			return false
		}
	}
	return true
}
