package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
)

const (
	insertQ     = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*role,.*\)\s*VALUES\s*\(\$1,.*\$9\)\s*RETURNING\s+created_at,\s*updated_at\s*$`
	byEmailQ    = `(?s)^SELECT\s+id,\s*email,\s*password_hash,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQ       = `(?s)^SELECT\s+id,\s*email,\s*password_hash,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	updateQ     = `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2,.*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+updated_at\s*$`
	userRowCols = "id,email,password_hash,role,profile_name,profile_avatar,last_login,reset_password_token,reset_password_expires,created_at,updated_at"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(userRowCols, ","))
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs(id.String(), "a@b.com", "$2a$10$hash", "employee", "a", nil, sqlmock.AnyArg(), nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	now := time.Now()
	u := &models.User{
		ID: id, Email: "a@b.com", PasswordHash: "$2a$10$hash", Role: models.RoleEmployee,
		Profile: &models.Profile{Name: "a", LastLogin: &now},
	}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created) {
		t.Fatalf("timestamps not filled: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{ID: uuid.New(), Email: "a@b.com", Role: models.RoleAdmin})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: uuid.New(), Email: "a@b.com", Role: models.RoleAdmin})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_FoundWithProfile(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(byEmailQ).
		WithArgs("alice@example.com").
		WillReturnRows(userRows().AddRow(id.String(), "alice@example.com", "hash", "manager",
			"Alice", "https://example.com/a.png", ts, nil, nil, ts, ts))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != id || got.Role != models.RoleManager || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.Profile == nil || got.Profile.Name != "Alice" || got.Profile.LastLogin == nil || !got.Profile.LastLogin.Equal(ts) {
		t.Fatalf("unexpected profile: %+v", got.Profile)
	}
	if got.ResetPasswordToken != "" || got.ResetPasswordExpires != nil {
		t.Fatalf("reset fields should be empty: %+v", got)
	}
}

func TestGetByID_FoundWithoutProfile(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	ts := time.Now().UTC()
	mock.ExpectQuery(byIDQ).
		WithArgs(id.String()).
		WillReturnRows(userRows().AddRow(id.String(), "bob@example.com", "hash", "employee",
			nil, nil, nil, "reset-token", ts, ts, ts))

	got, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Profile != nil {
		t.Fatalf("expected nil profile, got %+v", got.Profile)
	}
	if got.ResetPasswordToken != "reset-token" || got.ResetPasswordExpires == nil {
		t.Fatalf("reset fields not loaded: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), uuid.New())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	updated := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(updateQ).
		WithArgs(id.String(), "a@b.com", "hash", "admin", nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	got, err := repo.Update(context.Background(), &models.User{ID: id, Email: "a@b.com", PasswordHash: "hash", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Fatalf("updated_at not filled: %v", got.UpdatedAt)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(updateQ).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.User{ID: uuid.New(), Email: "a@b.com", Role: models.RoleAdmin})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(updateQ).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Update(context.Background(), &models.User{ID: uuid.New(), Email: "taken@b.com", Role: models.RoleAdmin})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}
