package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/users"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureDecode
	RefreshFailureExpired
	RefreshFailureSubjectMismatch
	RefreshFailurePrincipalGone
	RefreshFailureSessionNotFound
	RefreshFailureReuse
	RefreshFailureLookup
	RefreshFailureMint
	RefreshFailureStore
)

func (k RefreshFailureKind) String() string {
	switch k {
	case RefreshFailureNone:
		return "none"
	case RefreshFailureDecode:
		return "decode_failed"
	case RefreshFailureExpired:
		return "expired"
	case RefreshFailureSubjectMismatch:
		return "subject_mismatch"
	case RefreshFailurePrincipalGone:
		return "principal_not_found"
	case RefreshFailureSessionNotFound:
		return "no_live_session"
	case RefreshFailureReuse:
		return "superseded_token"
	case RefreshFailureLookup:
		return "lookup_failed"
	case RefreshFailureMint:
		return "mint_failed"
	case RefreshFailureStore:
		return "store_failed"
	default:
		return "unknown"
	}
}

// Internal reports whether the failure is an infrastructure fault.
func (k RefreshFailureKind) Internal() bool {
	return k >= RefreshFailureLookup
}

// RefreshResult carries either the rotated pair or failure metadata.
type RefreshResult struct {
	Failure   RefreshFailureKind
	Err       error
	SubjectID string
	Principal users.Principal
	Tokens    TokenPair
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Users  users.Lookup
	Tokens Issuers
	Store  refresh.Store
}

// RunRefresh verifies the presented refresh token and rotates it. The
// signature and expiry are checked before any store access. The store's
// Rotate is the single compare-and-overwrite step, so of two racing calls
// with the same token at most one succeeds.
func RunRefresh(ctx context.Context, presented, subjectID string, deps RefreshDeps) RefreshResult {
	res, ok := checkRefreshToken(ctx, presented, subjectID, deps)
	if !ok {
		return res
	}

	pair, err := deps.Tokens.mintPair(res.Principal)
	if err != nil {
		res.Failure, res.Err = RefreshFailureMint, err
		return res
	}

	err = deps.Store.Rotate(ctx, res.SubjectID, presented, pair.RefreshToken, deps.Tokens.Refresh.TTL())
	if err != nil {
		res.Err = err
		switch {
		case errors.Is(err, refresh.ErrMismatch):
			res.Failure = RefreshFailureReuse
		case errors.Is(err, refresh.ErrNotFound):
			res.Failure = RefreshFailureSessionNotFound
		default:
			res.Failure = RefreshFailureStore
		}
		return res
	}

	res.Tokens = pair
	return res
}

// RunVerifyRefresh performs the same checks as RunRefresh plus a store match,
// without rotating.
func RunVerifyRefresh(ctx context.Context, presented, subjectID string, deps RefreshDeps) RefreshResult {
	res, ok := checkRefreshToken(ctx, presented, subjectID, deps)
	if !ok {
		return res
	}

	matched, err := deps.Store.Matches(ctx, res.SubjectID, presented)
	if err != nil {
		res.Failure, res.Err = RefreshFailureStore, err
		return res
	}
	if !matched {
		res.Failure = RefreshFailureReuse
		if _, err := deps.Store.Get(ctx, res.SubjectID); errors.Is(err, refresh.ErrNotFound) {
			res.Failure = RefreshFailureSessionNotFound
		}
	}
	return res
}

func checkRefreshToken(ctx context.Context, presented, subjectID string, deps RefreshDeps) (RefreshResult, bool) {
	claims, err := deps.Tokens.Refresh.Verify(presented)
	if err != nil {
		kind := RefreshFailureDecode
		if errors.Is(err, jwt.ErrExpired) {
			kind = RefreshFailureExpired
		}
		return RefreshResult{Failure: kind, Err: err, SubjectID: subjectID}, false
	}

	if subjectID != "" && subjectID != claims.Subject {
		return RefreshResult{Failure: RefreshFailureSubjectMismatch, SubjectID: subjectID}, false
	}

	res := RefreshResult{SubjectID: claims.Subject}
	p, err := deps.Users.FindByID(ctx, claims.Subject)
	if err != nil {
		res.Err = err
		if errors.Is(err, users.ErrNotFound) {
			res.Failure = RefreshFailurePrincipalGone
		} else {
			res.Failure = RefreshFailureLookup
		}
		return res, false
	}
	res.Principal = p
	return res, true
}
