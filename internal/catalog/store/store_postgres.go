package store

import (
	"context"
	"database/sql"
	"fmt"

	"sitewise/internal/catalog/models"
)

// Postgres reads the checklist catalog. The catalog is append-only seed
// data; there is no write path here.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ListTemplates(ctx context.Context) ([]models.ChecklistTemplate, error) {
	const query = `SELECT id, title FROM checklist_templates ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.ChecklistTemplate
	for rows.Next() {
		var tpl models.ChecklistTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Title); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (s *Postgres) ListItems(ctx context.Context, templateID int64) ([]models.ChecklistItem, error) {
	const query = `
		SELECT id, template_id, item_text, category
		FROM checklist_items
		WHERE template_id = $1
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	defer rows.Close()

	var items []models.ChecklistItem
	for rows.Next() {
		var item models.ChecklistItem
		if err := rows.Scan(&item.ID, &item.TemplateID, &item.ItemText, &item.Category); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist items: %w", err)
	}
	return items, nil
}
