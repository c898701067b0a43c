// Package repomanager vends repositories bound to a connection or a
// transaction, and applies schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/orbit/internal/dbx"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/projects"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Projects(db dbx.DBTX) projects.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
