package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/staffhub/internal/dbx"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
	"github.com/dmitrijs2005/staffhub/internal/server/repositories/repomanager"
)

// SQLStore keeps users in Postgres. A save writes the users row and any new
// activity entries in one transaction.
type SQLStore struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewSQLStore(db *sql.DB, repos repomanager.RepositoryManager) *SQLStore {
	return &SQLStore{db: db, repos: repos}
}

func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repos.Users(s.db).GetByEmail(ctx, email)
}

func (s *SQLStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

func (s *SQLStore) Save(ctx context.Context, u *models.User) (*models.User, error) {
	if err := checkRecord(u); err != nil {
		return nil, err
	}

	rec := u.Clone()
	insert := rec.ID == uuid.Nil
	if insert {
		rec.ID = uuid.New()
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if insert {
			_, err = s.repos.Users(tx).Create(ctx, rec)
		} else {
			_, err = s.repos.Users(tx).Update(ctx, rec)
		}
		if err != nil {
			return err
		}

		activityRepo := s.repos.Activity(tx)
		for i := range rec.ActivityLog {
			if rec.ActivityLog[i].ID != 0 {
				continue
			}
			id, err := activityRepo.Append(ctx, rec.ID, rec.ActivityLog[i])
			if err != nil {
				return fmt.Errorf("append activity: %w", err)
			}
			rec.ActivityLog[i].ID = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *SQLStore) ListActivity(ctx context.Context, userID uuid.UUID) ([]models.Activity, error) {
	entries, err := s.repos.Activity(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	return entries, nil
}
