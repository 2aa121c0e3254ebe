package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/users"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureUnknownUser
	LoginFailureBadPassword
	LoginFailureLookup
	LoginFailureMint
	LoginFailureStore
)

func (k LoginFailureKind) String() string {
	switch k {
	case LoginFailureNone:
		return "none"
	case LoginFailureUnknownUser:
		return "unknown_user"
	case LoginFailureBadPassword:
		return "bad_password"
	case LoginFailureLookup:
		return "lookup_failed"
	case LoginFailureMint:
		return "mint_failed"
	case LoginFailureStore:
		return "store_failed"
	default:
		return "unknown"
	}
}

// Internal reports whether the failure is an infrastructure fault rather than
// a rejected credential.
func (k LoginFailureKind) Internal() bool {
	return k >= LoginFailureLookup
}

// LoginResult carries either the issued pair or failure metadata.
type LoginResult struct {
	Failure   LoginFailureKind
	Err       error
	Principal users.Principal
	Tokens    TokenPair
	// Upgraded is set when the stored password hash was rewritten with the
	// current parameters.
	Upgraded bool
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Users          users.Lookup
	Passwords      CredentialVerifier
	Tokens         Issuers
	Store          refresh.Store
	Updater        users.PasswordUpdater // optional
	UpgradeOnLogin bool
	Warn           func(string, ...any)
}

// RunLogin authenticates email/password, mints a pair and stores the refresh
// token. Nothing is returned to emit unless the store write succeeded.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	if deps.Warn == nil {
		deps.Warn = nopWarn
	}

	p, err := deps.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			deps.Passwords.VerifyDummy(password)
			return LoginResult{Failure: LoginFailureUnknownUser, Err: err}
		}
		return LoginResult{Failure: LoginFailureLookup, Err: err}
	}

	if !deps.Passwords.Verify(password, p.PasswordHash) {
		return LoginResult{Failure: LoginFailureBadPassword, Principal: p}
	}

	pair, err := deps.Tokens.mintPair(p)
	if err != nil {
		return LoginResult{Failure: LoginFailureMint, Err: err, Principal: p}
	}

	if err := deps.Store.Put(ctx, p.ID, pair.RefreshToken, deps.Tokens.Refresh.TTL()); err != nil {
		return LoginResult{Failure: LoginFailureStore, Err: err, Principal: p}
	}

	res := LoginResult{Principal: p, Tokens: pair}
	if deps.UpgradeOnLogin && deps.Updater != nil && deps.Passwords.NeedsUpgrade(p.PasswordHash) {
		res.Upgraded = upgradePasswordHash(ctx, p.ID, password, deps)
	}
	return res
}

func upgradePasswordHash(ctx context.Context, userID, password string, deps LoginDeps) bool {
	hash, err := deps.Passwords.Hash(password)
	if err != nil {
		deps.Warn("password rehash failed", "subject_id", userID, "error", err)
		return false
	}
	if err := deps.Updater.UpdatePasswordHash(ctx, userID, hash); err != nil {
		deps.Warn("password hash upgrade not persisted", "subject_id", userID, "error", err)
		return false
	}
	return true
}
