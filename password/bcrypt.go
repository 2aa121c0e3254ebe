package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost used by accounts imported from the
// previous deployment.
const DefaultBcryptCost = 10

// Bcrypt verifies legacy $2a$/$2b$/$2y$ hashes. New hashes are produced with
// argon2id; Hash exists for fixtures and data imports.
type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Bcrypt{cost: cost}, nil
}

func (b *Bcrypt) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (b *Bcrypt) Verify(secret, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrMalformedHash
	}
}

func isBcryptHash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}
