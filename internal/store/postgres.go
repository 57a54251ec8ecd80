package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/clintrovert/jirabridge/internal/migrations"
	"github.com/clintrovert/jirabridge/pkg/types"
)

// Open opens a PostgreSQL connection pool for the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// PostgresLocalUsers is the PostgreSQL-backed LocalUserRepository.
type PostgresLocalUsers struct {
	db DBTX
}

// NewPostgresLocalUsers binds a local user repository to the given handle.
func NewPostgresLocalUsers(db DBTX) *PostgresLocalUsers {
	return &PostgresLocalUsers{db: db}
}

func (r *PostgresLocalUsers) Create(ctx context.Context, user *types.LocalUser) (*types.LocalUser, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO local_users (id, email, username, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresLocalUsers) GetByEmail(ctx context.Context, email string) (*types.LocalUser, error) {
	query :=
		`SELECT id, email, username, password_hash, created_at FROM local_users
		 WHERE email = $1
		 `

	user := &types.LocalUser{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresLocalUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM local_users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresLocalUsers) List(ctx context.Context) ([]types.LocalUser, error) {
	query :=
		`SELECT id, email, username, password_hash, created_at FROM local_users
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var users []types.LocalUser
	for rows.Next() {
		var user types.LocalUser
		if err := rows.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

// PostgresMirror is the PostgreSQL-backed MirrorRepository.
type PostgresMirror struct {
	db DBTX
}

// NewPostgresMirror binds a mirror repository to the given handle.
func NewPostgresMirror(db DBTX) *PostgresMirror {
	return &PostgresMirror{db: db}
}

func (r *PostgresMirror) Upsert(ctx context.Context, username string, active bool) error {
	query :=
		`INSERT INTO jira_user_mirror (username, active)
		 VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET active = EXCLUDED.active
		 `

	if _, err := r.db.ExecContext(ctx, query, username, active); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresMirror) ListActive(ctx context.Context) ([]types.JiraUserMirror, error) {
	return r.list(ctx,
		`SELECT id, username, active FROM jira_user_mirror
		 WHERE active = TRUE
		 ORDER BY id
		 `)
}

func (r *PostgresMirror) List(ctx context.Context) ([]types.JiraUserMirror, error) {
	return r.list(ctx,
		`SELECT id, username, active FROM jira_user_mirror
		 ORDER BY id
		 `)
}

func (r *PostgresMirror) list(ctx context.Context, query string) ([]types.JiraUserMirror, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var mirrors []types.JiraUserMirror
	for rows.Next() {
		var m types.JiraUserMirror
		if err := rows.Scan(&m.ID, &m.Username, &m.Active); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		mirrors = append(mirrors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return mirrors, nil
}
