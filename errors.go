package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/users"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown e-mail and a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned by Refresh and VerifyRefresh for any
	// token that is malformed, expired, signed with another key, or no longer
	// the subject's live token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrNotFound never leaves the engine; lookups that miss are remapped to
	// one of the errors above.
	ErrNotFound = users.ErrNotFound
	// ErrInternal reports an infrastructure fault: store unreachable, signing
	// failure, hashing failure. No cookies are written when it is returned.
	ErrInternal = errors.New("internal error")
	// ErrUnauthorized is returned by ValidateAccess.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAccountExists is returned by Register for an e-mail already in use.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountCreationInvalid reports a malformed e-mail or a short password.
	ErrAccountCreationInvalid = errors.New("invalid account creation request")
	// ErrAccountRoleInvalid reports a role outside Config.Account.AllowedRoles.
	ErrAccountRoleInvalid = errors.New("invalid account role")
	// ErrAccountCreationDisabled means no AccountCreator was wired.
	ErrAccountCreationDisabled = errors.New("account creation disabled")

	// ErrEngineNotReady is returned by an Engine not produced by Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)
