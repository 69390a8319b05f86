// Package activity persists the per-user activity log.
package activity

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/staffhub/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, userID uuid.UUID, entry models.Activity) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Activity, error)
}
