package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/staffhub/internal/server/models"
)

// Repository persists the users table. ActivityLog is not touched here; see
// the activity repository.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}
