package domain

import (
	"errors"
	"fmt"
)

// Domain errors for structural violations. Each typed error matches its
// sentinel through errors.Is, so callers can branch on the category
// without unpacking the struct.

var (
	// Construction errors
	ErrEmptyNodeID    = errors.New("node ID cannot be empty")
	ErrEmptyNodeLabel = errors.New("node label cannot be empty")
	ErrEmptyRelation  = errors.New("edge relation cannot be empty")
	ErrEmptyEndpoint  = errors.New("edge endpoint ID cannot be empty")
	ErrEmptyGraphType = errors.New("graph type cannot be empty")

	// Structural invariant errors
	ErrDuplicateNode     = errors.New("duplicate node ID")
	ErrDanglingReference = errors.New("edge references unknown node")
	ErrNodeInUse         = errors.New("node still referenced by edges")
	ErrSelfLoop          = errors.New("self-loops disallowed for this namespace")
)

// DuplicateNodeError reports two nodes proposed with the same ID within
// one graph or one save batch.
type DuplicateNodeError struct {
	NodeID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node ID %q", e.NodeID)
}

func (e *DuplicateNodeError) Is(target error) bool {
	return target == ErrDuplicateNode
}

// DanglingReferenceError reports an edge whose endpoint is absent from
// the accompanying node set.
type DanglingReferenceError struct {
	SourceID  string
	TargetID  string
	Relation  string
	MissingID string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("edge %s-[%s]->%s references unknown node %q",
		e.SourceID, e.Relation, e.TargetID, e.MissingID)
}

func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}

// NodeInUseError reports an attempt to remove a node while edges still
// reference it and cascade removal was not requested.
type NodeInUseError struct {
	NodeID    string
	EdgeCount int
}

func (e *NodeInUseError) Error() string {
	return fmt.Sprintf("node %q still referenced by %d edge(s)", e.NodeID, e.EdgeCount)
}

func (e *NodeInUseError) Is(target error) bool {
	return target == ErrNodeInUse
}

// SelfLoopError reports a self-loop in a namespace whose policy
// disallows them.
type SelfLoopError struct {
	NodeID   string
	Relation string
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("self-loop %s-[%s]->%s disallowed by namespace policy",
		e.NodeID, e.Relation, e.NodeID)
}

func (e *SelfLoopError) Is(target error) bool {
	return target == ErrSelfLoop
}

// NotFoundError reports a node lookup miss inside an aggregate.
type NotFoundError struct {
	NodeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %q not found in graph", e.NodeID)
}
