package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertQ     = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	byEmailQ    = `(?s)^SELECT\s+id,\s*email,\s*password,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQ       = `(?s)^SELECT\s+id,\s*email,\s*password,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	refreshSelQ = `(?s)^SELECT\s+refresh_token\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	refreshSetQ = `(?s)^UPDATE\s+users\s+SET\s+refresh_token\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s*$`
	refreshCASQ = `(?s)^UPDATE\s+users\s+SET\s+refresh_token\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s+AND\s+refresh_token\s*=\s*\$3\s*$`
	passwordQ   = `(?s)^UPDATE\s+users\s+SET\s+password\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs("a@x.com", "$argon2id$hash", RoleCustomer).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	got, err := repo.Create(context.Background(), NewPrincipal{Email: " A@x.com ", PasswordHash: "$argon2id$hash", Role: RoleCustomer})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "7" || got.Email != "a@x.com" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("a@x.com", "h", RoleCustomer).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), NewPrincipal{Email: "a@x.com", PasswordHash: "h", Role: RoleCustomer})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("a@x.com", "h", RoleCustomer).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), NewPrincipal{Email: "a@x.com", PasswordHash: "h", Role: RoleCustomer})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "password", "role", "created_at"}).
		AddRow(int64(7), "a@x.com", "hash", RoleAdmin, time.Now())
	mock.ExpectQuery(byEmailQ).WithArgs("a@x.com").WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "A@X.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != "7" || got.Role != RoleAdmin || got.PasswordHash != "hash" {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByEmail(context.Background(), "ghost@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByID_RejectsNonNumericWithoutQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if _, err := repo.FindByID(context.Background(), "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestFindByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "password", "role", "created_at"}).
		AddRow(int64(7), "a@x.com", "hash", RoleCustomer, time.Now())
	mock.ExpectQuery(byIDQ).WithArgs(int64(7)).WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), "7")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.Email != "a@x.com" {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestStoredRefreshHash_NullIsEmpty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(refreshSelQ).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_token"}).AddRow(nil))

	got, err := repo.StoredRefreshHash(context.Background(), "7")
	if err != nil {
		t.Fatalf("StoredRefreshHash error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty hash, got %q", got)
	}
}

func TestSetStoredRefreshHash_EmptyWritesNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(refreshSetQ).WithArgs(nil, int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetStoredRefreshHash(context.Background(), "7", ""); err != nil {
		t.Fatalf("SetStoredRefreshHash error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetStoredRefreshHash_MissingRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(refreshSetQ).WithArgs("h", int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetStoredRefreshHash(context.Background(), "9", "h"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSwapStoredRefreshHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(refreshCASQ).WithArgs("new", int64(7), "old").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(refreshCASQ).WithArgs("newer", int64(7), "old").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SwapStoredRefreshHash(context.Background(), "7", "old", "new")
	if err != nil || !ok {
		t.Fatalf("expected first swap to win, ok=%v err=%v", ok, err)
	}
	ok, err = repo.SwapStoredRefreshHash(context.Background(), "7", "old", "newer")
	if err != nil || ok {
		t.Fatalf("expected stale swap to lose, ok=%v err=%v", ok, err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(passwordQ).WithArgs("rehashed", int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePasswordHash(context.Background(), "7", "rehashed"); err != nil {
		t.Fatalf("UpdatePasswordHash error: %v", err)
	}
}
