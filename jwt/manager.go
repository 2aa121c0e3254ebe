package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type SigningMethod string

const (
	MethodHS256   SigningMethod = "hs256"
	MethodEd25519 SigningMethod = "ed25519"
)

// Kind separates access tokens from refresh tokens so one cannot be replayed
// as the other even if both managers share a key.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const minHMACKeyBytes = 16

var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrWrongKind        = errors.New("token kind mismatch")
	ErrInvalidClaims    = errors.New("token claims invalid")
)

// Config configures one Manager. For hs256, PrivateKey is the shared secret.
// For ed25519, PrivateKey signs and PublicKey (or VerifyKeys) verifies.
type Config struct {
	Kind          Kind
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte
	Now           func() time.Time
}

// Claims is the payload carried by both token kinds. ID (jti) is random so two
// tokens minted for the same subject within one second still differ.
type Claims struct {
	Kind Kind   `json:"typ"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager mints and verifies tokens of a single Kind. It holds no mutable
// state and is safe for concurrent use.
type Manager struct {
	config Config
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Kind != KindAccess && cfg.Kind != KindRefresh {
		return nil, errors.New("unknown token kind")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) < minHMACKeyBytes {
			return nil, fmt.Errorf("hs256 %s secret must be at least %d bytes", cfg.Kind, minHMACKeyBytes)
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key or verify key set")
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return nil, errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return nil, errors.New("KeyID is not present in VerifyKeys")
		}
	}

	return &Manager{config: cfg}, nil
}

func (m *Manager) Kind() Kind { return m.config.Kind }

func (m *Manager) TTL() time.Duration { return m.config.TTL }

// Mint signs a token for subject and returns it with its expiry. role is
// only embedded in access tokens.
func (m *Manager) Mint(subject, role string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("empty subject")
	}

	now := m.config.Now()
	claims := Claims{
		Kind: m.config.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}
	if m.config.Kind == KindAccess {
		claims.Role = role
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token := jwt.NewWithClaims(m.method(), claims)
	if m.config.KeyID != "" {
		token.Header["kid"] = m.config.KeyID
	}

	signKey, err := m.signKey()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := token.SignedString(signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature, expiry, issuer/audience and kind. It does no I/O.
// Errors wrap one of ErrMalformed, ErrInvalidSignature, ErrExpired,
// ErrWrongKind or ErrInvalidClaims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithTimeFunc(m.config.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, m.keyFunc)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Kind != m.config.Kind {
		return nil, ErrWrongKind
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	return claims, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != m.method().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	if len(m.config.VerifyKeys) > 0 {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := m.config.VerifyKeys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return m.keyBytesToVerifyKey(key)
	}

	if m.config.KeyID != "" {
		kid, _ := t.Header["kid"].(string)
		if kid != m.config.KeyID {
			return nil, errors.New("unknown kid")
		}
	}

	return m.verifyKey()
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}

func (m *Manager) method() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (m *Manager) signKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(m.config.PrivateKey)
	default:
		return m.config.PrivateKey, nil
	}
}

func (m *Manager) verifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(m.config.PublicKey)
	default:
		return m.config.PrivateKey, nil
	}
}

func (m *Manager) keyBytesToVerifyKey(key []byte) (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(key)
	default:
		return key, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
