// Package users owns the principal record: lookup by e-mail or ID, account
// creation, password-hash updates and the hashed refresh-token column used by
// the durable refresh store.
//
// PostgresRepository talks to PostgreSQL through database/sql with the pgx
// stdlib driver; Migrate applies the embedded goose migrations. MemoryRepository
// implements the same surface in process.
package users
