package goSession

import (
	"errors"
	"time"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	internalmetrics "github.com/MrEthical07/goSession/internal/metrics"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/users"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder wires an [Engine]. Each Builder produces at most one Engine.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users   UserLookup
	records RefreshRecords
	creator AccountCreator
	updater PasswordUpdater
	store   refresh.Store

	auditSink AuditSink
	logger    *zap.Logger
	now       func() time.Time

	// Set by the metrics toggles; applied over the config at Build so a
	// later WithConfig does not reset them.
	metricsEnabled    *bool
	latencyHistograms *bool

	built bool
}

func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client used by the ephemeral refresh store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserLookup sets the principal lookup. If the value also implements
// [AccountCreator], [PasswordUpdater] or [RefreshRecords] those roles are
// picked up unless set explicitly.
func (b *Builder) WithUserLookup(lookup UserLookup) *Builder {
	b.users = lookup
	return b
}

// WithUserRepository sets every user collaborator from one repository.
func (b *Builder) WithUserRepository(repo users.Repository) *Builder {
	b.users = repo
	b.records = repo
	b.creator = repo
	b.updater = repo
	return b
}

// WithRefreshRecords sets the user-row accessor used by the durable backend.
func (b *Builder) WithRefreshRecords(records RefreshRecords) *Builder {
	b.records = records
	return b
}

func (b *Builder) WithAccountCreator(creator AccountCreator) *Builder {
	b.creator = creator
	return b
}

func (b *Builder) WithPasswordUpdater(updater PasswordUpdater) *Builder {
	b.updater = updater
	return b
}

// WithRefreshStore overrides backend selection from Config.Store.
func (b *Builder) WithRefreshStore(store refresh.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock replaces time.Now for token issue/expiry and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled overrides Config.Metrics.Enabled regardless of the
// order in which it and WithConfig are called.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.metricsEnabled = &enabled
	return b
}

// WithLatencyHistograms overrides Config.Metrics.EnableLatencyHistograms
// regardless of the order in which it and WithConfig are called.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.latencyHistograms = &enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if b.metricsEnabled != nil {
		cfg.Metrics.Enabled = *b.metricsEnabled
	}
	if b.latencyHistograms != nil {
		cfg.Metrics.EnableLatencyHistograms = *b.latencyHistograms
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user lookup required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// -------- CREDENTIAL VERIFIER --------
	verifier, err := password.NewVerifier(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	}, cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}

	// -------- TOKEN SIGNERS --------
	access, err := jwt.NewManager(jwt.Config{
		Kind:          jwt.KindAccess,
		TTL:           cfg.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.AccessSecret,
		PublicKey:     cfg.JWT.AccessPublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		KeyID:         cfg.JWT.KeyID,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}
	refreshTokens, err := jwt.NewManager(jwt.Config{
		Kind:          jwt.KindRefresh,
		TTL:           cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.RefreshSecret,
		PublicKey:     cfg.JWT.RefreshPublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		KeyID:         cfg.JWT.KeyID,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	// -------- COLLABORATORS --------
	creator := b.creator
	if creator == nil {
		creator, _ = b.users.(AccountCreator)
	}
	updater := b.updater
	if updater == nil {
		updater, _ = b.users.(PasswordUpdater)
	}

	// -------- REFRESH STORE --------
	store := b.store
	if store == nil {
		switch cfg.Store.Backend {
		case StoreEphemeral:
			if b.redis == nil {
				return nil, errors.New("ephemeral refresh store requires redis client")
			}
			store = refresh.NewRedisStore(b.redis, cfg.Store.RedisPrefix)
		case StoreDurable:
			records := b.records
			if records == nil {
				records, _ = b.users.(RefreshRecords)
			}
			if records == nil {
				return nil, errors.New("durable refresh store requires refresh records")
			}
			store = refresh.NewFieldStore(records, verifier)
		}
	}

	tokens := flows.Issuers{Access: access, Refresh: refreshTokens}
	warn := logger.Sugar().Warnw

	e := &Engine{
		config:    cfg,
		users:     b.users,
		creator:   creator,
		store:     store,
		verifier:  verifier,
		access:    access,
		refresh:   refreshTokens,
		metrics:   internalmetrics.New(cfg.Metrics.Enabled, cfg.Metrics.EnableLatencyHistograms),
		logger:    logger,
		now:       now,
		flowsDeps: flows.Deps{
			Login: flows.LoginDeps{
				Users:          b.users,
				Passwords:      verifier,
				Tokens:         tokens,
				Store:          store,
				Updater:        updater,
				UpgradeOnLogin: cfg.Password.UpgradeOnLogin,
				Warn:           warn,
			},
			Refresh: flows.RefreshDeps{
				Users:  b.users,
				Tokens: tokens,
				Store:  store,
			},
			Logout: flows.LogoutDeps{
				Store: store,
			},
			Register: flows.RegisterDeps{
				Creator:           creator,
				Passwords:         verifier,
				MinPasswordLength: cfg.Account.MinPasswordLength,
				DefaultRole:       cfg.Account.DefaultRole,
				AllowedRoles:      cfg.Account.AllowedRoles,
			},
		},
	}

	if cfg.Audit.Enabled {
		e.audit = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	b.built = true
	return e, nil
}
