package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrEmptySecret is returned when hashing an empty string.
	ErrEmptySecret = errors.New("secret must not be empty")
	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed hash")
)

// Verifier is the credential verifier used by the session engine. It hashes
// with argon2id and verifies both argon2id and legacy bcrypt hashes.
type Verifier struct {
	argon  *Argon2
	bcrypt *Bcrypt
	dummy  string
}

func NewVerifier(cfg Config, bcryptCost int) (*Verifier, error) {
	a, err := NewArgon2(cfg)
	if err != nil {
		return nil, err
	}
	b, err := NewBcrypt(bcryptCost)
	if err != nil {
		return nil, err
	}

	// Hash of a random value that no caller knows. VerifyDummy spends the
	// same work as a real verification against it.
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	dummy, err := a.Hash(base64.RawStdEncoding.EncodeToString(seed))
	if err != nil {
		return nil, err
	}

	return &Verifier{argon: a, bcrypt: b, dummy: dummy}, nil
}

func (v *Verifier) Hash(secret string) (string, error) {
	return v.argon.Hash(secret)
}

// Verify reports whether plaintext matches storedHash. Mismatches and
// malformed hashes both yield false; it never returns an error.
func (v *Verifier) Verify(plaintext, storedHash string) bool {
	if storedHash == "" {
		return false
	}

	var (
		ok  bool
		err error
	)
	switch {
	case strings.HasPrefix(storedHash, argon2Prefix):
		ok, err = v.argon.Verify(plaintext, storedHash)
	case isBcryptHash(storedHash):
		ok, err = v.bcrypt.Verify(plaintext, storedHash)
	default:
		return false
	}
	return err == nil && ok
}

// VerifyDummy runs a verification that always fails, so lookups for unknown
// accounts cost the same as a wrong password.
func (v *Verifier) VerifyDummy(plaintext string) {
	_ = v.Verify(plaintext, v.dummy)
}

// NeedsUpgrade reports whether storedHash should be replaced with a fresh
// argon2id hash: every bcrypt hash, and argon2id hashes with weaker
// parameters than the current config.
func (v *Verifier) NeedsUpgrade(storedHash string) bool {
	if isBcryptHash(storedHash) {
		return true
	}
	needs, err := v.argon.NeedsUpgrade(storedHash)
	return err == nil && needs
}
