package domain

import (
	"encoding/json"
	"fmt"
)

// Edge is an immutable value object describing a directed, labeled
// relation between two node IDs. It has no identity beyond its triple;
// parallel edges with different relations are distinct values.
type Edge struct {
	sourceID   string
	targetID   string
	relation   string
	properties PropertyBag
}

// NewEdge creates an edge with validation. Self-loops are permitted at
// this level; namespace policy rejects them later when configured to.
func NewEdge(sourceID, targetID, relation string, properties PropertyBag) (Edge, error) {
	if sourceID == "" || targetID == "" {
		return Edge{}, ErrEmptyEndpoint
	}
	if relation == "" {
		return Edge{}, ErrEmptyRelation
	}
	return Edge{
		sourceID:   sourceID,
		targetID:   targetID,
		relation:   relation,
		properties: properties.Clone(),
	}, nil
}

// MustNewEdge is a convenience constructor for fixtures and builders.
func MustNewEdge(sourceID, targetID, relation string, properties PropertyBag) Edge {
	edge, err := NewEdge(sourceID, targetID, relation, properties)
	if err != nil {
		panic(err)
	}
	return edge
}

// SourceID returns the ID of the edge's source node.
func (e Edge) SourceID() string {
	return e.sourceID
}

// TargetID returns the ID of the edge's target node.
func (e Edge) TargetID() string {
	return e.targetID
}

// Relation returns the edge's relation label.
func (e Edge) Relation() string {
	return e.relation
}

// Properties returns an independent copy of the edge's property bag.
func (e Edge) Properties() PropertyBag {
	return e.properties.Clone()
}

// IsSelfLoop reports whether the edge connects a node to itself.
func (e Edge) IsSelfLoop() bool {
	return e.sourceID == e.targetID
}

// Equal reports whether two edges carry the same triple and property bag.
func (e Edge) Equal(other Edge) bool {
	return e.sourceID == other.sourceID &&
		e.targetID == other.targetID &&
		e.relation == other.relation &&
		e.properties.Equal(other.properties)
}

// multisetKey produces a canonical string for edge multiset comparison.
// encoding/json sorts map keys, so equal bags yield equal keys. A nil
// bag and an empty one are the same value under Equal, so both collapse
// to the same token here.
func (e Edge) multisetKey() string {
	props := "{}"
	if len(e.properties) > 0 {
		data, err := json.Marshal(e.properties)
		if err != nil {
			data = []byte(fmt.Sprintf("!%v", err))
		}
		props = string(data)
	}
	return e.sourceID + "\x1f" + e.targetID + "\x1f" + e.relation + "\x1f" + props
}
