// Package store persists locally registered users and the Jira user mirror
// table. Repositories come in a PostgreSQL flavor and an in-memory flavor
// with identical behavior.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clintrovert/jirabridge/pkg/types"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// DBTX is the subset of database/sql used by the repositories. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LocalUserRepository persists locally registered users.
type LocalUserRepository interface {
	Create(ctx context.Context, user *types.LocalUser) (*types.LocalUser, error)
	GetByEmail(ctx context.Context, email string) (*types.LocalUser, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]types.LocalUser, error)
}

// MirrorRepository persists the Jira user mirror table.
type MirrorRepository interface {
	Upsert(ctx context.Context, username string, active bool) error
	ListActive(ctx context.Context) ([]types.JiraUserMirror, error)
	List(ctx context.Context) ([]types.JiraUserMirror, error)
}
