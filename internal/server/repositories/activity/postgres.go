package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/staffhub/internal/dbx"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append stores entry and returns its generated id.
func (r *PostgresRepository) Append(ctx context.Context, userID uuid.UUID, entry models.Activity) (int64, error) {
	query :=
		`INSERT INTO user_activity (user_id, action, occurred_at)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	var id int64
	if err := r.db.QueryRowContext(ctx, query, userID, entry.Action, entry.Timestamp).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

// ListByUser returns the user's entries in insertion order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Activity, error) {
	query :=
		`SELECT id, action, occurred_at
		 FROM user_activity
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Action, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
