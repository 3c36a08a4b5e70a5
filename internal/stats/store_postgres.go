package stats

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore runs the grouped counts directly in SQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CountReportsByStatus(ctx context.Context) ([]StatusCount, error) {
	const query = `
		SELECT status, COUNT(*) AS count
		FROM inspection_reports
		GROUP BY status
		ORDER BY status
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count reports by status: %w", err)
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) CountFailedFindingsByCategory(ctx context.Context) ([]CategoryCount, error) {
	const query = `
		SELECT i.category, COUNT(*) AS count
		FROM inspection_findings f
		JOIN checklist_items i ON f.checklist_item_id = i.id
		WHERE f.status = 'FAIL'
		GROUP BY i.category
		ORDER BY i.category
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count failed findings by category: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}
