package sqlite

import "time"

// Column names used in hand-written query fragments. The row models
// below and these constants are the single source of truth for column
// naming; queries never spell a column as a bare string literal.
const (
	colNamespaceID = "namespace_id"
	colGraphType   = "graph_type"
	colNodeID      = "node_id"
	colSourceID    = "source_id"
	colTargetID    = "target_id"
)

// NamespaceModel is the header row, one per graph type. Deleting it
// cascades to the node and edge rows through schema-level foreign keys.
// Saves replace the whole row, so SavedAt is the time of the last
// replace, not of the namespace's first appearance.
type NamespaceModel struct {
	NamespaceID string    `gorm:"column:namespace_id;primaryKey"`
	GraphType   string    `gorm:"column:graph_type;uniqueIndex;not null"`
	SavedAt     time.Time `gorm:"column:saved_at"`
}

func (NamespaceModel) TableName() string { return "graph_namespaces" }

// NodeModel is one node row. Edge rows reference nodes by the domain
// node ID, never by a surrogate, keeping row schema and domain identity
// in lockstep.
type NodeModel struct {
	NamespaceID    string `gorm:"column:namespace_id;primaryKey"`
	NodeID         string `gorm:"column:node_id;primaryKey"`
	Label          string `gorm:"column:label;not null"`
	PropertiesJSON string `gorm:"column:properties_json;not null"`
}

func (NodeModel) TableName() string { return "graph_nodes" }

// EdgeModel is one edge row. Edges carry no identity of their own;
// insertion order is preserved through the implicit rowid.
type EdgeModel struct {
	NamespaceID    string `gorm:"column:namespace_id;not null"`
	SourceID       string `gorm:"column:source_id;not null"`
	TargetID       string `gorm:"column:target_id;not null"`
	Relation       string `gorm:"column:relation;not null"`
	PropertiesJSON string `gorm:"column:properties_json;not null"`
}

func (EdgeModel) TableName() string { return "graph_edges" }
