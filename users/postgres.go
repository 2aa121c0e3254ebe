package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects through the pgx stdlib driver and pings the server before
// returning the pool.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in NewPrincipal) (Principal, error) {
	query :=
		`INSERT INTO users (email, password, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	var (
		id      int64
		created time.Time
	)
	email := normalizeEmail(in.Email)
	err := r.db.QueryRowContext(ctx, query, email, in.PasswordHash, in.Role).Scan(&id, &created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Principal{}, ErrExists
		}
		return Principal{}, fmt.Errorf("db error: %w", err)
	}

	return Principal{
		ID:           strconv.FormatInt(id, 10),
		Email:        email,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    created,
	}, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Principal, error) {
	query :=
		`SELECT id, email, password, role, created_at FROM users
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, normalizeEmail(email)))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Principal, error) {
	key, ok := parseID(id)
	if !ok {
		return Principal{}, ErrNotFound
	}

	query :=
		`SELECT id, email, password, role, created_at FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, key))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (Principal, error) {
	var (
		p  Principal
		id int64
	)
	if err := row.Scan(&id, &p.Email, &p.PasswordHash, &p.Role, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Principal{}, ErrNotFound
		}
		return Principal{}, fmt.Errorf("db error: %w", err)
	}
	p.ID = strconv.FormatInt(id, 10)
	return p, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	key, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}

	query :=
		`UPDATE users SET password = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, hash, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) StoredRefreshHash(ctx context.Context, id string) (string, error) {
	key, ok := parseID(id)
	if !ok {
		return "", ErrNotFound
	}

	query :=
		`SELECT refresh_token FROM users
		 WHERE id = $1
		 `

	var hash sql.NullString
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return hash.String, nil
}

func (r *PostgresRepository) SetStoredRefreshHash(ctx context.Context, id, hash string) error {
	key, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}

	query :=
		`UPDATE users SET refresh_token = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, nullable(hash), key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// SwapStoredRefreshHash replaces oldHash with newHash only if the row still
// holds oldHash. It reports false when another writer got there first.
func (r *PostgresRepository) SwapStoredRefreshHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, ErrNotFound
	}

	query :=
		`UPDATE users SET refresh_token = $1
		 WHERE id = $2 AND refresh_token = $3
		 `

	res, err := r.db.ExecContext(ctx, query, nullable(newHash), key, oldHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseID(id string) (int64, bool) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
