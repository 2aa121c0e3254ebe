package users

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repository. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Lookup interface {
	FindByEmail(ctx context.Context, email string) (Principal, error)
	FindByID(ctx context.Context, id string) (Principal, error)
}

type Creator interface {
	Create(ctx context.Context, in NewPrincipal) (Principal, error)
}

type PasswordUpdater interface {
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// RefreshHashStore persists the hashed refresh token on the user row. An
// empty hash means no live refresh credential.
type RefreshHashStore interface {
	StoredRefreshHash(ctx context.Context, id string) (string, error)
	SetStoredRefreshHash(ctx context.Context, id, hash string) error
	SwapStoredRefreshHash(ctx context.Context, id, oldHash, newHash string) (bool, error)
}

// Repository is implemented by PostgresRepository and MemoryRepository.
type Repository interface {
	Lookup
	Creator
	PasswordUpdater
	RefreshHashStore
}
