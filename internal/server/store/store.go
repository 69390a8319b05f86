// Package store is the credential store consumed by the auth service. Both
// implementations validate records before persisting them and report a
// taken email as common.ErrorAlreadyExists.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
	"github.com/dmitrijs2005/staffhub/internal/server/validation"
)

// Store finds and saves users. Found users carry no ActivityLog: the log on a
// record passed to Save holds entries to append, and entries with an ID are
// treated as already stored.
type Store interface {
	// FindByEmail returns common.ErrorNotFound when no user has email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// Save inserts u when u.ID is uuid.Nil and updates it otherwise. The
	// returned copy carries the assigned ID, timestamps and activity ids.
	Save(ctx context.Context, u *models.User) (*models.User, error)
	// ListActivity returns the stored activity of a user, oldest first.
	ListActivity(ctx context.Context, userID uuid.UUID) ([]models.Activity, error)
}

func checkRecord(u *models.User) error {
	if err := validation.ValidateUser(u); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidRecord, err)
	}
	return nil
}
