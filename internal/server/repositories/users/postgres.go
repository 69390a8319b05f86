package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/dbx"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, role, profile_name, profile_avatar, last_login,
		 reset_password_token, reset_password_expires, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user with its pre-assigned ID and fills in the timestamps
// chosen by the database.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, email, password_hash, role, profile_name, profile_avatar, last_login,
		 reset_password_token, reset_password_expires)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at
		 `

	name, avatar, lastLogin := profileArgs(user.Profile)
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, string(user.Role), name, avatar, lastLogin,
		nullString(user.ResetPasswordToken), user.ResetPasswordExpires,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + `
		 FROM users
		 WHERE email = $1
		 `
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + `
		 FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

// Update overwrites every mutable column of the row identified by user.ID.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET email = $2, password_hash = $3, role = $4, profile_name = $5, profile_avatar = $6,
		 last_login = $7, reset_password_token = $8, reset_password_expires = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	name, avatar, lastLogin := profileArgs(user.Profile)
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, string(user.Role), name, avatar, lastLogin,
		nullString(user.ResetPasswordToken), user.ResetPasswordExpires,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user                      models.User
		role                      string
		name, avatar, resetToken  sql.NullString
		lastLogin, resetExpiresAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &role, &name, &avatar, &lastLogin,
		&resetToken, &resetExpiresAt, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role = models.Role(role)
	if name.Valid || avatar.Valid || lastLogin.Valid {
		user.Profile = &models.Profile{Name: name.String, Avatar: avatar.String}
		if lastLogin.Valid {
			t := lastLogin.Time
			user.Profile.LastLogin = &t
		}
	}
	user.ResetPasswordToken = resetToken.String
	if resetExpiresAt.Valid {
		t := resetExpiresAt.Time
		user.ResetPasswordExpires = &t
	}

	return &user, nil
}

func profileArgs(p *models.Profile) (sql.NullString, sql.NullString, sql.NullTime) {
	if p == nil {
		return sql.NullString{}, sql.NullString{}, sql.NullTime{}
	}
	var lastLogin sql.NullTime
	if p.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *p.LastLogin, Valid: true}
	}
	return nullString(p.Name), nullString(p.Avatar), lastLogin
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
