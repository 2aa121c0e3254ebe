package refresh

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the subject has no live refresh record.
	ErrNotFound = errors.New("refresh record not found")
	// ErrMismatch means the presented token is not the one on record, either
	// because it was already rotated or because a concurrent rotation won.
	ErrMismatch = errors.New("refresh token mismatch")
	// ErrUnavailable wraps backend faults.
	ErrUnavailable = errors.New("refresh store unavailable")
)

// Store keeps at most one live refresh credential per subject.
//
// Put overwrites unconditionally. Rotate replaces the record only if the
// presented token still matches it; the compare and the overwrite are a single
// atomic step, so concurrent rotations of the same token have one winner.
// Delete is idempotent.
type Store interface {
	Put(ctx context.Context, subjectID, token string, ttl time.Duration) error
	Get(ctx context.Context, subjectID string) (string, error)
	Matches(ctx context.Context, subjectID, presented string) (bool, error)
	Rotate(ctx context.Context, subjectID, presented, next string, ttl time.Duration) error
	Delete(ctx context.Context, subjectID string) error
}
