package feedback

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore appends feedback rows to the ai_feedback table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	const query = `
		INSERT INTO ai_feedback (username, image_path, ai_result, user_final_result, user_observation, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Username,
		event.ImagePath,
		event.AIResult,
		event.UserFinalResult,
		event.UserObservation,
		event.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}
