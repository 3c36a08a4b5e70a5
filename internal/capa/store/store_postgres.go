package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sitewise/internal/capa/models"
	"sitewise/pkg/platform/sentinel"
)

// Postgres persists corrective actions. Referential integrity against
// findings and users is delegated to the database's foreign keys.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, action *models.Action) (int64, error) {
	const query = `
		INSERT INTO capa_actions (finding_id, action_description, assigned_to, status, target_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		action.FindingID,
		action.ActionDescription,
		action.AssignedTo,
		string(action.Status),
		action.TargetDate,
	).Scan(&action.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, sentinel.ErrForeignKey
		}
		return 0, fmt.Errorf("insert capa action: %w", err)
	}
	return action.ID, nil
}

func (s *Postgres) Close(ctx context.Context, id int64) (*models.Action, error) {
	const query = `
		UPDATE capa_actions
		SET status = 'CLOSED'
		WHERE id = $1
		RETURNING id, finding_id, action_description, assigned_to, status, target_date
	`
	var action models.Action
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&action.ID,
		&action.FindingID,
		&action.ActionDescription,
		&action.AssignedTo,
		&action.Status,
		&action.TargetDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("close capa action: %w", err)
	}
	return &action, nil
}
