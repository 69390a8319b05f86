package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
)

// MemoryStore is a process-local Store. Records are copied on the way in
// and out.
type MemoryStore struct {
	mu          sync.RWMutex
	byID        map[uuid.UUID]*models.User
	byEmail     map[string]uuid.UUID
	activity    map[uuid.UUID][]models.Activity
	activitySeq int64
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[uuid.UUID]*models.User),
		byEmail:  make(map[string]uuid.UUID),
		activity: make(map[uuid.UUID][]models.Activity),
		now:      time.Now,
	}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, u *models.User) (*models.User, error) {
	if err := checkRecord(u); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := u.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if rec.ID == uuid.Nil {
		if _, taken := s.byEmail[rec.Email]; taken {
			return nil, common.ErrorAlreadyExists
		}
		rec.ID = uuid.New()
		rec.CreatedAt = now
	} else {
		existing, ok := s.byID[rec.ID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		if owner, taken := s.byEmail[rec.Email]; taken && owner != rec.ID {
			return nil, common.ErrorAlreadyExists
		}
		delete(s.byEmail, existing.Email)
		rec.CreatedAt = existing.CreatedAt
	}
	rec.UpdatedAt = now

	for i := range rec.ActivityLog {
		if rec.ActivityLog[i].ID != 0 {
			continue
		}
		s.activitySeq++
		rec.ActivityLog[i].ID = s.activitySeq
		s.activity[rec.ID] = append(s.activity[rec.ID], rec.ActivityLog[i])
	}

	stored := rec.Clone()
	stored.ActivityLog = nil
	s.byID[rec.ID] = stored
	s.byEmail[rec.Email] = rec.ID

	return rec, nil
}

func (s *MemoryStore) ListActivity(_ context.Context, userID uuid.UUID) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Activity(nil), s.activity[userID]...), nil
}
