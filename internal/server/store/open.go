package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/staffhub/internal/server/repositories/repomanager"
)

// MemoryDSN selects the in-process store instead of Postgres.
const MemoryDSN = "memory"

// Open returns the store for dsn. For Postgres it connects with the pgx
// driver, applies migrations and also returns the *sql.DB so the caller can
// close it; for MemoryDSN the returned *sql.DB is nil.
func Open(ctx context.Context, dsn string) (Store, *sql.DB, error) {
	if dsn == MemoryDSN {
		return NewMemoryStore(), nil, nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return NewSQLStore(db, m), db, nil
}
