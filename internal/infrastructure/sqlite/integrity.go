package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"graphcache/internal/repository"
)

// Stats returns direct row counts for a namespace. Administrative
// tooling uses this to verify storage-level truth, for example that a
// cascade delete really removed every child row.
func (r *GraphRepository) Stats(ctx context.Context, graphType string) (repository.NamespaceStats, bool, error) {
	stats := repository.NamespaceStats{GraphType: graphType}

	var header NamespaceModel
	err := r.db.WithContext(ctx).Where(colGraphType+" = ?", graphType).
		First(&header).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return stats, false, nil
	}
	if err != nil {
		return stats, false, &repository.RepositoryError{Op: "stats", GraphType: graphType, Cause: err}
	}

	if err := r.db.WithContext(ctx).Model(&NodeModel{}).
		Where(colNamespaceID+" = ?", header.NamespaceID).
		Count(&stats.NodeRows).Error; err != nil {
		return stats, false, &repository.RepositoryError{Op: "stats", GraphType: graphType, Cause: err}
	}
	if err := r.db.WithContext(ctx).Model(&EdgeModel{}).
		Where(colNamespaceID+" = ?", header.NamespaceID).
		Count(&stats.EdgeRows).Error; err != nil {
		return stats, false, &repository.RepositoryError{Op: "stats", GraphType: graphType, Cause: err}
	}
	return stats, true, nil
}

// CheckIntegrity scans a namespace's edge rows for endpoints that have
// no matching node row. The load path's reconstruction is the
// authoritative check; this is the row-level variant for operators
// inspecting a namespace without loading it.
func (r *GraphRepository) CheckIntegrity(ctx context.Context, graphType string) error {
	var header NamespaceModel
	err := r.db.WithContext(ctx).Where(colGraphType+" = ?", graphType).
		First(&header).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &repository.RepositoryError{Op: "check_integrity", GraphType: graphType,
			Cause: errors.New("namespace not found")}
	}
	if err != nil {
		return &repository.RepositoryError{Op: "check_integrity", GraphType: graphType, Cause: err}
	}

	var dangling int64
	err = r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT COUNT(*) FROM graph_edges e
		WHERE e.%[1]s = ?
		  AND (NOT EXISTS (
		         SELECT 1 FROM graph_nodes n
		         WHERE n.%[1]s = e.%[1]s AND n.%[2]s = e.%[3]s)
		    OR NOT EXISTS (
		         SELECT 1 FROM graph_nodes n
		         WHERE n.%[1]s = e.%[1]s AND n.%[2]s = e.%[4]s))`,
		colNamespaceID, colNodeID, colSourceID, colTargetID),
		header.NamespaceID).Scan(&dangling).Error
	if err != nil {
		return &repository.RepositoryError{Op: "check_integrity", GraphType: graphType, Cause: err}
	}
	if dangling > 0 {
		return &repository.CorruptCacheError{
			GraphType: graphType,
			Cause:     fmt.Errorf("%d edge row(s) reference missing nodes", dangling),
		}
	}
	return nil
}
