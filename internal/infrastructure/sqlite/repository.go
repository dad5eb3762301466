package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	modsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"graphcache/internal/domain"
	"graphcache/internal/observability"
	"graphcache/internal/repository"
)

// defaultBatchSize is the number of rows per batched INSERT. Large
// enough to amortize statement overhead at the 10k-node scale, small
// enough to stay clear of SQLite's bound-parameter limit.
const defaultBatchSize = 500

// GraphRepository persists graph aggregates in SQLite, one namespace
// per graph type, with full-replace save semantics. Construct it
// explicitly and pass it to callers; there is no package-level instance.
type GraphRepository struct {
	db        *gorm.DB
	log       *zap.Logger
	metrics   *observability.CacheMetrics
	batchSize int
	policies  map[string]domain.NamespacePolicy
}

// Option configures a GraphRepository.
type Option func(*GraphRepository)

// WithLogger sets the repository logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *GraphRepository) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *observability.CacheMetrics) Option {
	return func(r *GraphRepository) {
		r.metrics = m
	}
}

// WithBatchSize overrides the batched-insert chunk size.
func WithBatchSize(n int) Option {
	return func(r *GraphRepository) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithPolicies sets per-namespace structural policies, keyed by graph
// type. Namespaces without an entry use the permissive default.
func WithPolicies(policies map[string]domain.NamespacePolicy) Option {
	return func(r *GraphRepository) {
		r.policies = policies
	}
}

// NewGraphRepository creates a repository over an opened database.
func NewGraphRepository(db *gorm.DB, opts ...Option) *GraphRepository {
	r := &GraphRepository{
		db:        db,
		log:       zap.NewNop(),
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	_ repository.GraphCache = (*GraphRepository)(nil)
	_ repository.Inspector  = (*GraphRepository)(nil)
)

func (r *GraphRepository) policyFor(graphType string) domain.NamespacePolicy {
	return r.policies[graphType]
}

// Save atomically replaces the cached graph for graphType. Validation
// and row encoding happen before the transaction opens, so a rejected
// graph leaves the previously cached state untouched.
func (r *GraphRepository) Save(ctx context.Context, graphType string, g *domain.Graph) (err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOperation("save", start, err) }()

	if graphType == "" {
		return domain.ErrEmptyGraphType
	}
	if g == nil {
		return &repository.RepositoryError{Op: "save", GraphType: graphType,
			Cause: errors.New("nil graph")}
	}
	if g.GraphType() != graphType {
		return &repository.RepositoryError{Op: "save", GraphType: graphType,
			Cause: fmt.Errorf("graph belongs to namespace %q", g.GraphType())}
	}

	// Defense in depth: the aggregate's mutators already enforce these
	// invariants, but the bulk path re-checks against the namespace's
	// configured policy so a caller that bypassed the domain model
	// cannot persist an invalid graph.
	if err = domain.ValidateStructure(g.Nodes(), g.Edges(), r.policyFor(graphType)); err != nil {
		return err
	}

	namespaceID := uuid.New().String()
	nodeRows, edgeRows, err := encodeRows(namespaceID, g)
	if err != nil {
		return &repository.RepositoryError{Op: "save", GraphType: graphType, Cause: err}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Full replace: dropping the old header cascades to its node
		// and edge rows through the schema's foreign keys.
		if err := tx.Where(colGraphType+" = ?", graphType).
			Delete(&NamespaceModel{}).Error; err != nil {
			return err
		}
		header := NamespaceModel{
			NamespaceID: namespaceID,
			GraphType:   graphType,
			SavedAt:     time.Now().UTC(),
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		if len(nodeRows) > 0 {
			if err := tx.CreateInBatches(nodeRows, r.batchSize).Error; err != nil {
				return err
			}
		}
		if len(edgeRows) > 0 {
			if err := tx.CreateInBatches(edgeRows, r.batchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isLockContention(err) {
			r.log.Warn("save lost transaction race",
				zap.String("graph_type", graphType), zap.Error(err))
			return &repository.ConflictError{GraphType: graphType, Cause: err}
		}
		return &repository.RepositoryError{Op: "save", GraphType: graphType, Cause: err}
	}

	r.metrics.RecordGraphSize(graphType, g.NodeCount(), g.EdgeCount())
	r.log.Debug("graph saved",
		zap.String("graph_type", graphType),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Load reconstructs the cached graph for graphType. A missing namespace
// is (nil, false, nil), never an error; stored rows that fail domain
// reconstruction surface as a CorruptCacheError and the namespace is
// left in place for inspection.
func (r *GraphRepository) Load(ctx context.Context, graphType string) (g *domain.Graph, found bool, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOperation("load", start, err) }()

	if graphType == "" {
		return nil, false, domain.ErrEmptyGraphType
	}

	var (
		nodeRows []NodeModel
		edgeRows []EdgeModel
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var header NamespaceModel
		if err := tx.Where(colGraphType+" = ?", graphType).
			First(&header).Error; err != nil {
			return err
		}
		if err := tx.Where(colNamespaceID+" = ?", header.NamespaceID).
			Order(colNodeID).Find(&nodeRows).Error; err != nil {
			return err
		}
		return tx.Where(colNamespaceID+" = ?", header.NamespaceID).
			Order("rowid").Find(&edgeRows).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &repository.RepositoryError{Op: "load", GraphType: graphType, Cause: err}
	}

	g, err = decodeRows(graphType, nodeRows, edgeRows)
	if err != nil {
		r.log.Error("cached graph failed reconstruction",
			zap.String("graph_type", graphType), zap.Error(err))
		return nil, false, &repository.CorruptCacheError{GraphType: graphType, Cause: err}
	}

	r.log.Debug("graph loaded",
		zap.String("graph_type", graphType),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Duration("took", time.Since(start)))
	return g, true, nil
}

// Delete removes a namespace; the schema cascades the removal to every
// node and edge row. Deleting an absent namespace is a no-op.
func (r *GraphRepository) Delete(ctx context.Context, graphType string) (err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOperation("delete", start, err) }()

	if graphType == "" {
		return domain.ErrEmptyGraphType
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where(colGraphType+" = ?", graphType).
			Delete(&NamespaceModel{}).Error
	})
	if err != nil {
		if isLockContention(err) {
			return &repository.ConflictError{GraphType: graphType, Cause: err}
		}
		return &repository.RepositoryError{Op: "delete", GraphType: graphType, Cause: err}
	}
	r.metrics.ForgetNamespace(graphType)
	r.log.Debug("namespace deleted", zap.String("graph_type", graphType))
	return nil
}

// DeleteAll removes every namespace in one transaction.
func (r *GraphRepository) DeleteAll(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveOperation("delete_all", start, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&NamespaceModel{}).Error
	})
	if err != nil {
		return &repository.RepositoryError{Op: "delete_all", Cause: err}
	}
	r.log.Debug("all namespaces deleted")
	return nil
}

// Namespaces yields existing graph types in lexical order. Each range
// over the sequence issues a fresh query, so it is restartable.
func (r *GraphRepository) Namespaces(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rows, err := r.db.WithContext(ctx).Model(&NamespaceModel{}).
			Select(colGraphType).Order(colGraphType).Rows()
		if err != nil {
			yield("", &repository.RepositoryError{Op: "namespaces", Cause: err})
			return
		}
		defer rows.Close()

		for rows.Next() {
			var graphType string
			if err := rows.Scan(&graphType); err != nil {
				yield("", &repository.RepositoryError{Op: "namespaces", Cause: err})
				return
			}
			if !yield(graphType, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", &repository.RepositoryError{Op: "namespaces", Cause: err})
		}
	}
}

// ListNamespaces materializes Namespaces into a slice.
func (r *GraphRepository) ListNamespaces(ctx context.Context) ([]string, error) {
	var out []string
	for graphType, err := range r.Namespaces(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, graphType)
	}
	return out, nil
}

func encodeRows(namespaceID string, g *domain.Graph) ([]NodeModel, []EdgeModel, error) {
	nodes := g.Nodes()
	nodeRows := make([]NodeModel, 0, len(nodes))
	for _, node := range nodes {
		props, err := marshalBag(node.Properties())
		if err != nil {
			return nil, nil, fmt.Errorf("node %q properties: %w", node.ID(), err)
		}
		nodeRows = append(nodeRows, NodeModel{
			NamespaceID:    namespaceID,
			NodeID:         node.ID(),
			Label:          node.Label(),
			PropertiesJSON: props,
		})
	}

	edges := g.Edges()
	edgeRows := make([]EdgeModel, 0, len(edges))
	for i, edge := range edges {
		props, err := marshalBag(edge.Properties())
		if err != nil {
			return nil, nil, fmt.Errorf("edge %d properties: %w", i, err)
		}
		edgeRows = append(edgeRows, EdgeModel{
			NamespaceID:    namespaceID,
			SourceID:       edge.SourceID(),
			TargetID:       edge.TargetID(),
			Relation:       edge.Relation(),
			PropertiesJSON: props,
		})
	}
	return nodeRows, edgeRows, nil
}

func decodeRows(graphType string, nodeRows []NodeModel, edgeRows []EdgeModel) (*domain.Graph, error) {
	nodes := make([]*domain.Node, 0, len(nodeRows))
	for _, row := range nodeRows {
		bag, err := unmarshalBag(row.PropertiesJSON)
		if err != nil {
			return nil, fmt.Errorf("node %q properties: %w", row.NodeID, err)
		}
		node, err := domain.NewNode(row.NodeID, row.Label, bag)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", row.NodeID, err)
		}
		nodes = append(nodes, node)
	}

	edges := make([]domain.Edge, 0, len(edgeRows))
	for i, row := range edgeRows {
		bag, err := unmarshalBag(row.PropertiesJSON)
		if err != nil {
			return nil, fmt.Errorf("edge %d properties: %w", i, err)
		}
		edge, err := domain.NewEdge(row.SourceID, row.TargetID, row.Relation, bag)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edges = append(edges, edge)
	}

	// Reconstruction runs with the permissive policy: a namespace whose
	// policy later tightened must still load its older snapshot.
	return domain.ReconstructGraph(graphType, nodes, edges, domain.NamespacePolicy{})
}

func marshalBag(bag domain.PropertyBag) (string, error) {
	if len(bag) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(bag)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalBag(raw string) (domain.PropertyBag, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var bag domain.PropertyBag
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// isLockContention reports whether err is SQLITE_BUSY or SQLITE_LOCKED,
// the engine's signal that a concurrent writer held the database past
// the busy timeout.
func isLockContention(err error) bool {
	var se *modsqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}
