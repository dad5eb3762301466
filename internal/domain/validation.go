package domain

// NamespacePolicy holds per-namespace structural rules. The zero value
// is the default policy: self-loops allowed.
type NamespacePolicy struct {
	DisallowSelfLoops bool
}

// ValidateStructure checks a flat node/edge collection against the
// structural invariants shared by the graph aggregate's mutators and
// the repository's bulk save path. Checks run in a fixed order and
// short-circuit on the first failure, so the same invalid input always
// produces the same error:
//
//  1. duplicate node IDs
//  2. edges referencing unknown node IDs
//  3. self-loops, when the namespace policy disallows them
func ValidateStructure(nodes []*Node, edges []Edge, policy NamespacePolicy) error {
	ids := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if _, exists := ids[node.ID()]; exists {
			return &DuplicateNodeError{NodeID: node.ID()}
		}
		ids[node.ID()] = struct{}{}
	}

	for _, edge := range edges {
		if err := checkEdgeAgainst(ids, edge, policy); err != nil {
			return err
		}
	}
	return nil
}

// checkEdgeAgainst validates a single edge against a known node ID set.
// The graph aggregate uses it for incremental AddEdge checks so the
// incremental and bulk paths can never disagree.
func checkEdgeAgainst(ids map[string]struct{}, edge Edge, policy NamespacePolicy) error {
	if _, ok := ids[edge.SourceID()]; !ok {
		return &DanglingReferenceError{
			SourceID:  edge.SourceID(),
			TargetID:  edge.TargetID(),
			Relation:  edge.Relation(),
			MissingID: edge.SourceID(),
		}
	}
	if _, ok := ids[edge.TargetID()]; !ok {
		return &DanglingReferenceError{
			SourceID:  edge.SourceID(),
			TargetID:  edge.TargetID(),
			Relation:  edge.Relation(),
			MissingID: edge.TargetID(),
		}
	}
	if policy.DisallowSelfLoops && edge.IsSelfLoop() {
		return &SelfLoopError{NodeID: edge.SourceID(), Relation: edge.Relation()}
	}
	return nil
}
