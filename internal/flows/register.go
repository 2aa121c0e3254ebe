package flows

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/MrEthical07/goSession/users"
)

// RegisterFailureKind classifies account creation failures.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureInvalidEmail
	RegisterFailureWeakPassword
	RegisterFailureInvalidRole
	RegisterFailureDuplicate
	RegisterFailureHash
	RegisterFailureCreate
)

func (k RegisterFailureKind) String() string {
	switch k {
	case RegisterFailureNone:
		return "none"
	case RegisterFailureInvalidEmail:
		return "invalid_email"
	case RegisterFailureWeakPassword:
		return "weak_password"
	case RegisterFailureInvalidRole:
		return "invalid_role"
	case RegisterFailureDuplicate:
		return "duplicate"
	case RegisterFailureHash:
		return "hash_failed"
	case RegisterFailureCreate:
		return "create_failed"
	default:
		return "unknown"
	}
}

type RegisterRequest struct {
	Email    string
	Password string
	Role     string
}

type RegisterResult struct {
	Failure   RegisterFailureKind
	Err       error
	Principal users.Principal
}

// RegisterDeps captures account creation dependencies.
type RegisterDeps struct {
	Creator           users.Creator
	Passwords         CredentialVerifier
	MinPasswordLength int
	DefaultRole       string
	AllowedRoles      []string
}

// RunRegister validates the request, hashes the password and creates the
// principal.
func RunRegister(ctx context.Context, req RegisterRequest, deps RegisterDeps) RegisterResult {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		return RegisterResult{Failure: RegisterFailureInvalidEmail}
	}
	if utf8.RuneCountInString(req.Password) < deps.MinPasswordLength {
		return RegisterResult{Failure: RegisterFailureWeakPassword}
	}

	role := req.Role
	if role == "" {
		role = deps.DefaultRole
	}
	if !roleAllowed(deps.AllowedRoles, role) {
		return RegisterResult{Failure: RegisterFailureInvalidRole}
	}

	hash, err := deps.Passwords.Hash(req.Password)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureHash, Err: err}
	}

	p, err := deps.Creator.Create(ctx, users.NewPrincipal{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, users.ErrExists) {
			return RegisterResult{Failure: RegisterFailureDuplicate, Err: err}
		}
		return RegisterResult{Failure: RegisterFailureCreate, Err: err}
	}
	return RegisterResult{Principal: p}
}

func validEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndexByte(email, '@')+1:], ".")
}

func roleAllowed(allowed []string, role string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
