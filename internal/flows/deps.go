package flows

import (
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/users"
)

// TokenIssuer is the slice of *jwt.Manager the flows need.
type TokenIssuer interface {
	Mint(subject, role string) (string, time.Time, error)
	Verify(token string) (*jwt.Claims, error)
	TTL() time.Duration
}

// CredentialVerifier is the slice of *password.Verifier the flows need.
type CredentialVerifier interface {
	Hash(secret string) (string, error)
	Verify(plaintext, storedHash string) bool
	VerifyDummy(plaintext string)
	NeedsUpgrade(storedHash string) bool
}

// TokenPair is one minted access/refresh pair.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Deps groups the per-operation dependency sets. The engine builds this once
// at Build and passes the matching field into each RunX call.
type Deps struct {
	Login    LoginDeps
	Refresh  RefreshDeps
	Logout   LogoutDeps
	Register RegisterDeps
}

// Issuers pairs the two token managers.
type Issuers struct {
	Access  TokenIssuer
	Refresh TokenIssuer
}

func (i Issuers) mintPair(p users.Principal) (TokenPair, error) {
	access, accessExp, err := i.Access.Mint(p.ID, p.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refreshTok, refreshExp, err := i.Refresh.Mint(p.ID, "")
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshTok,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func nopWarn(string, ...any) {}
