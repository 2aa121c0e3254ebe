package users

import (
	"errors"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var (
	// ErrNotFound is returned when no principal matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrExists is returned by Create when the e-mail is already registered.
	ErrExists = errors.New("user already exists")
)

// Principal is the authenticatable user record. ID is opaque to callers; the
// Postgres repository stores it as BIGSERIAL and formats it in decimal.
type Principal struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// NewPrincipal carries the fields needed to create an account. PasswordHash
// must already be hashed.
type NewPrincipal struct {
	Email        string
	PasswordHash string
	Role         string
}
