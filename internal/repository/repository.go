// Package repository defines the persistence contract for cached
// knowledge graphs. It keeps the domain model independent of the
// storage engine: the domain layer never imports an adapter, and
// adapters are handed to callers by explicit construction, never
// through a package-level singleton.
package repository

import (
	"context"
	"iter"

	"graphcache/internal/domain"
)

// GraphCache is the namespace-scoped persistence contract for graph
// aggregates. A namespace ("graph type") is created on first Save,
// fully replaced on every subsequent Save, and removed by Delete or
// DeleteAll. There is no externally observable partially-present state.
type GraphCache interface {
	// Save atomically replaces the cached graph for graphType with g.
	// The graph is validated once more before any row is touched; a
	// validation failure leaves the previously cached graph untouched.
	Save(ctx context.Context, graphType string, g *domain.Graph) error

	// Load reconstructs the cached graph for graphType. found is false
	// when the namespace has never been saved or was deleted; an empty
	// graph loads as (g, true, nil) with zero nodes and edges. Stored
	// data that fails domain reconstruction returns a CorruptCacheError.
	Load(ctx context.Context, graphType string) (g *domain.Graph, found bool, err error)

	// Delete removes the namespace and, by cascade, every node and edge
	// row belonging to it. Deleting an absent namespace is a no-op.
	Delete(ctx context.Context, graphType string) error

	// DeleteAll removes every namespace.
	DeleteAll(ctx context.Context) error

	// Namespaces yields existing graph types lazily; ranging over the
	// sequence again restarts it. Administrative use only.
	Namespaces(ctx context.Context) iter.Seq2[string, error]

	// ListNamespaces materializes Namespaces into a slice.
	ListNamespaces(ctx context.Context) ([]string, error)
}

// NamespaceStats reports direct row counts for one namespace, for
// administrative and benchmarking tools that need to see storage-level
// truth rather than the reconstructed aggregate.
type NamespaceStats struct {
	GraphType string
	NodeRows  int64
	EdgeRows  int64
}

// Inspector exposes storage-level introspection alongside the cache
// contract. Implemented by adapters that can count rows cheaply.
type Inspector interface {
	// Stats returns row counts for a namespace. found is false when the
	// namespace is absent.
	Stats(ctx context.Context, graphType string) (stats NamespaceStats, found bool, err error)

	// CheckIntegrity scans a namespace's edge rows for endpoints missing
	// from its node rows. It reports, never repairs.
	CheckIntegrity(ctx context.Context, graphType string) error
}
