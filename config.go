package goSession

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/users"
)

// Config is passed to [Builder.WithConfig] once at startup. Operations never
// read configuration from the environment.
type Config struct {
	JWT      JWTConfig
	Store    StoreConfig
	Password PasswordConfig
	Cookie   CookieConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// ProductionMode marks emitted cookies Secure.
	ProductionMode bool
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds separate keys and lifetimes for access and refresh tokens.
// With hs256 the *Secret fields are HMAC keys; with ed25519 they are private
// keys and the *PublicKey fields verify.
type JWTConfig struct {
	SigningMethod string // "hs256" (default) or "ed25519"

	AccessSecret    []byte
	AccessPublicKey []byte
	AccessTTL       time.Duration

	RefreshSecret    []byte
	RefreshPublicKey []byte
	RefreshTTL       time.Duration

	Issuer   string
	Audience string
	Leeway   time.Duration
	KeyID    string
}

/*
====================================
REFRESH STORE CONFIG
====================================
*/

type StoreBackend string

const (
	// StoreEphemeral keeps the raw refresh token in Redis with a TTL.
	StoreEphemeral StoreBackend = "ephemeral"
	// StoreDurable keeps a hash of the refresh token on the user row.
	StoreDurable StoreBackend = "durable"
)

type StoreConfig struct {
	Backend     StoreBackend
	RedisPrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	BcryptCost     int // legacy hashes only
	UpgradeOnLogin bool
}

/*
====================================
COOKIE CONFIG
====================================
*/

type CookieConfig struct {
	AccessName   string
	RefreshName  string
	Path         string
	Domain       string
	SameSite     http.SameSite
	RedirectPath string
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

type AccountConfig struct {
	MinPasswordLength int
	DefaultRole       string
	AllowedRoles      []string
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a config with every field set except the token
// secrets, which callers must supply.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod: "hs256",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Backend:     StoreEphemeral,
			RedisPrefix: refresh.DefaultPrefix,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			BcryptCost:     10,
			UpgradeOnLogin: true,
		},
		Cookie: CookieConfig{
			AccessName:   "access_token",
			RefreshName:  "refresh_token",
			Path:         "/",
			SameSite:     http.SameSiteLaxMode,
			RedirectPath: "/",
		},
		Account: AccountConfig{
			MinPasswordLength: 8,
			DefaultRole:       users.RoleCustomer,
			AllowedRoles:      []string{users.RoleCustomer, users.RoleAdmin},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.AccessPublicKey = cloneBytes(cfg.JWT.AccessPublicKey)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	out.JWT.RefreshPublicKey = cloneBytes(cfg.JWT.RefreshPublicKey)
	out.Account.AllowedRoles = append([]string(nil), cfg.Account.AllowedRoles...)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem it finds.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	switch c.JWT.SigningMethod {
	case "hs256":
		if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
			return errors.New("hs256 requires AccessSecret and RefreshSecret")
		}
		if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
			return errors.New("AccessSecret and RefreshSecret must differ")
		}
	case "ed25519":
		if len(c.JWT.AccessSecret) == 0 || len(c.JWT.AccessPublicKey) == 0 {
			return errors.New("ed25519 requires AccessSecret and AccessPublicKey")
		}
		if len(c.JWT.RefreshSecret) == 0 || len(c.JWT.RefreshPublicKey) == 0 {
			return errors.New("ed25519 requires RefreshSecret and RefreshPublicKey")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Store
	switch c.Store.Backend {
	case StoreEphemeral, StoreDurable:
	default:
		return errors.New("Store Backend must be 'ephemeral' or 'durable'")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Cookies
	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" {
		return errors.New("Cookie names must be set")
	}
	if c.Cookie.AccessName == c.Cookie.RefreshName {
		return errors.New("Cookie AccessName and RefreshName must differ")
	}
	if c.Cookie.SameSite == http.SameSiteNoneMode && !c.ProductionMode {
		return errors.New("SameSite=None requires ProductionMode (Secure cookies)")
	}

	// Account
	if c.Account.MinPasswordLength < 1 {
		return errors.New("Account MinPasswordLength must be >= 1")
	}
	if !containsRole(c.Account.AllowedRoles, c.Account.DefaultRole) {
		return errors.New("Account DefaultRole must be listed in AllowedRoles")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	return nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
