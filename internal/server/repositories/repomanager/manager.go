package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/staffhub/internal/dbx"
	"github.com/dmitrijs2005/staffhub/internal/server/repositories/activity"
	"github.com/dmitrijs2005/staffhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Activity(db dbx.DBTX) activity.Repository
}
