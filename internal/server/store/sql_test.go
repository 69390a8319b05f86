package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/dbx"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
	"github.com/dmitrijs2005/staffhub/internal/server/repositories/activity"
	"github.com/dmitrijs2005/staffhub/internal/server/repositories/users"
)

type fakeUsers struct {
	byEmail   map[string]*models.User
	created   []*models.User
	updated   []*models.User
	createErr error
	getErr    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) (*models.User, error) {
	f.updated = append(f.updated, u)
	return u, nil
}

type fakeActivity struct {
	seq       int64
	appended  []models.Activity
	list      []models.Activity
	appendErr error
	listErr   error
}

func (f *fakeActivity) Append(_ context.Context, _ uuid.UUID, a models.Activity) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.seq++
	f.appended = append(f.appended, a)
	return f.seq, nil
}

func (f *fakeActivity) ListByUser(context.Context, uuid.UUID) ([]models.Activity, error) {
	return f.list, f.listErr
}

type fakeManager struct {
	users    *fakeUsers
	activity *fakeActivity
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Activity(dbx.DBTX) activity.Repository        { return m.activity }

func newSQLStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock, *fakeManager) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := &fakeManager{users: &fakeUsers{byEmail: map[string]*models.User{}}, activity: &fakeActivity{}}
	return NewSQLStore(db, m), mock, m
}

func TestSQLStore_InsertAssignsIDAndAppendsActivityInTx(t *testing.T) {
	s, mock, m := newSQLStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	in := newUser("a@b.com")
	saved, err := s.Save(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, uuid.Nil, in.ID)
	require.Len(t, m.users.created, 1)
	assert.Equal(t, saved.ID, m.users.created[0].ID)
	assert.Len(t, m.activity.appended, 1)
	assert.Equal(t, int64(1), saved.ActivityLog[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateAppendsOnlyNewEntries(t *testing.T) {
	s, mock, m := newSQLStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	u := newUser("a@b.com")
	u.ID = uuid.New()
	u.ActivityLog[0].ID = 41
	u.ActivityLog = append(u.ActivityLog, models.Activity{Action: "login", Timestamp: time.Now()})

	saved, err := s.Save(context.Background(), u)
	require.NoError(t, err)

	assert.Empty(t, m.users.created)
	assert.Len(t, m.users.updated, 1)
	require.Len(t, m.activity.appended, 1)
	assert.Equal(t, "login", m.activity.appended[0].Action)
	assert.Equal(t, []int64{41, 1}, []int64{saved.ActivityLog[0].ID, saved.ActivityLog[1].ID})
}

func TestSQLStore_RollsBackOnFailure(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		s, mock, m := newSQLStore(t)
		m.users.createErr = common.ErrorAlreadyExists
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := s.Save(context.Background(), newUser("a@b.com"))
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("activity append", func(t *testing.T) {
		s, mock, m := newSQLStore(t)
		m.activity.appendErr = errors.New("disk full")
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := s.Save(context.Background(), newUser("a@b.com"))
		assert.ErrorContains(t, err, "append activity: disk full")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLStore_InvalidRecordNeverReachesDatabase(t *testing.T) {
	s, mock, _ := newSQLStore(t)

	u := newUser("not-an-email")
	_, err := s.Save(context.Background(), u)
	assert.ErrorIs(t, err, common.ErrInvalidRecord)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_FindDoesNotReadActivity(t *testing.T) {
	s, _, m := newSQLStore(t)
	id := uuid.New()
	m.users.byEmail["a@b.com"] = &models.User{ID: id, Email: "a@b.com", PasswordHash: "h", Role: models.RoleAdmin}
	m.activity.listErr = errors.New("must not be called")

	got, err := s.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Empty(t, got.ActivityLog)

	got, err = s.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
}

func TestSQLStore_ListActivity(t *testing.T) {
	s, _, m := newSQLStore(t)
	m.activity.list = []models.Activity{{ID: 3, Action: "login", Timestamp: time.Now()}}

	got, err := s.ListActivity(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, m.activity.list, got)

	m.activity.listErr = errors.New("timeout")
	_, err = s.ListActivity(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "load activity: timeout")
}

func TestSQLStore_FindErrors(t *testing.T) {
	s, _, _ := newSQLStore(t)

	_, err := s.FindByEmail(context.Background(), "ghost@b.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
