package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/users"
)

// RecordStore is the slice of the user repository the durable backend needs.
type RecordStore = users.RefreshHashStore

// Hasher hashes presented tokens before they are written to the user row.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(plaintext, storedHash string) bool
}

// FieldStore is the durable backend: a salted hash of the current refresh
// token is kept on the user record. It has no TTL of its own; the token's
// signed expiry bounds its life.
type FieldStore struct {
	records RecordStore
	hasher  Hasher
}

func NewFieldStore(records RecordStore, hasher Hasher) *FieldStore {
	return &FieldStore{records: records, hasher: hasher}
}

func (s *FieldStore) Put(ctx context.Context, subjectID, token string, _ time.Duration) error {
	hash, err := s.hasher.Hash(token)
	if err != nil {
		return fmt.Errorf("hash refresh token: %w", err)
	}
	if err := s.records.SetStoredRefreshHash(ctx, subjectID, hash); err != nil {
		return mapRecordErr(err)
	}
	return nil
}

func (s *FieldStore) Get(ctx context.Context, subjectID string) (string, error) {
	hash, err := s.records.StoredRefreshHash(ctx, subjectID)
	if err != nil {
		return "", mapRecordErr(err)
	}
	if hash == "" {
		return "", ErrNotFound
	}
	return hash, nil
}

func (s *FieldStore) Matches(ctx context.Context, subjectID, presented string) (bool, error) {
	hash, err := s.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.hasher.Verify(presented, hash), nil
}

// Rotate verifies presented against the stored hash, then swaps in the hash
// of next only if the row still holds the hash it just verified.
func (s *FieldStore) Rotate(ctx context.Context, subjectID, presented, next string, _ time.Duration) error {
	current, err := s.Get(ctx, subjectID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(presented, current) {
		return ErrMismatch
	}

	nextHash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash refresh token: %w", err)
	}
	swapped, err := s.records.SwapStoredRefreshHash(ctx, subjectID, current, nextHash)
	if err != nil {
		return mapRecordErr(err)
	}
	if !swapped {
		return ErrMismatch
	}
	return nil
}

func (s *FieldStore) Delete(ctx context.Context, subjectID string) error {
	err := s.records.SetStoredRefreshHash(ctx, subjectID, "")
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return mapRecordErr(err)
	}
	return nil
}

func mapRecordErr(err error) error {
	if errors.Is(err, users.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
