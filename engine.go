package goSession

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	internalmetrics "github.com/MrEthical07/goSession/internal/metrics"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/users"
	"go.uber.org/zap"
)

// Engine runs the session lifecycle: login, refresh rotation, logout and
// access-token validation. It keeps no per-request state; every operation is
// safe for concurrent use, including for the same subject.
type Engine struct {
	config    Config
	users     UserLookup
	creator   AccountCreator
	store     refresh.Store
	verifier  *password.Verifier
	access    *jwt.Manager
	refresh   *jwt.Manager
	audit     *internalaudit.Dispatcher
	metrics   *internalmetrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	flowsDeps flows.Deps
}

// Close flushes buffered audit events. The engine must not be used after.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports events discarded because the audit buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the current counters and histogram buckets. It
// returns empty maps when metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// RefreshStore returns the backend selected at Build.
func (e *Engine) RefreshStore() refresh.Store {
	return e.store
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// ValidateAccess verifies an access token's signature, expiry and kind. It
// does no I/O. Every failure is reported as ErrUnauthorized.
func (e *Engine) ValidateAccess(ctx context.Context, token string) (*AccessClaims, error) {
	if e == nil || e.access == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	claims, err := e.access.Verify(token)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		if !errors.Is(err, jwt.ErrExpired) {
			e.logger.Debug("access token rejected", zap.Error(err))
		}
		return nil, ErrUnauthorized
	}
	e.metricInc(MetricValidateSuccess)
	return claims, nil
}

// CurrentPrincipal loads the principal an access token was issued to. A
// principal deleted since issue is reported as ErrUnauthorized.
func (e *Engine) CurrentPrincipal(ctx context.Context, subjectID string) (PrincipalView, error) {
	if e == nil || e.users == nil {
		return PrincipalView{}, ErrEngineNotReady
	}
	p, err := e.users.FindByID(ctx, subjectID)
	if errors.Is(err, users.ErrNotFound) {
		return PrincipalView{}, ErrUnauthorized
	}
	if err != nil {
		e.logger.Error("principal lookup failed", zap.String("subject_id", subjectID), zap.Error(err))
		return PrincipalView{}, ErrInternal
	}
	return viewOf(p), nil
}

func (e *Engine) cookieOptions(expires time.Time) CookieOptions {
	return CookieOptions{
		HTTPOnly: true,
		Secure:   e.config.ProductionMode,
		Expires:  expires,
		Path:     e.config.Cookie.Path,
		Domain:   e.config.Cookie.Domain,
		SameSite: e.config.Cookie.SameSite,
	}
}

// emitPair hands both tokens to sink. Callers only reach this after the
// refresh record was committed.
func (e *Engine) emitPair(sink CookieSink, pair TokenPair) {
	if sink == nil {
		return
	}
	sink.Set(e.config.Cookie.AccessName, pair.AccessToken, e.cookieOptions(pair.AccessExpiresAt))
	sink.Set(e.config.Cookie.RefreshName, pair.RefreshToken, e.cookieOptions(pair.RefreshExpiresAt))
}

func (e *Engine) clearPair(sink CookieSink) {
	if sink == nil {
		return
	}
	sink.Clear(e.config.Cookie.AccessName)
	sink.Clear(e.config.Cookie.RefreshName)
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}
