// Package repomanager vends repositories bound to either the connection
// pool or an open transaction, and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Secrets(db dbx.DBTX) secrets.Repository
}
