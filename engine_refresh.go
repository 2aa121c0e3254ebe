package goSession

import (
	"context"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"go.uber.org/zap"
)

// Refresh rotates the subject's refresh token. presented must verify under
// the refresh key, be unexpired and still be the stored token for its
// subject. subjectID, when non-empty, must equal the token's subject.
//
// On success the old token is permanently unusable. Every rejection returns
// ErrInvalidRefreshToken; infrastructure faults return ErrInternal. The sink
// is untouched on failure.
func (e *Engine) Refresh(ctx context.Context, presented, subjectID string, sink CookieSink) (*TokenPair, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunRefresh(ctx, presented, subjectID, e.flowsDeps.Refresh)
	if err := e.refreshFailure(ctx, res); err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, internalaudit.EventRefreshSuccess, true, res.SubjectID, "", nil)
	e.emitPair(sink, res.Tokens)

	pair := res.Tokens
	return &pair, nil
}

// VerifyRefresh checks presented like Refresh does but leaves the store
// untouched, and returns the principal it belongs to.
func (e *Engine) VerifyRefresh(ctx context.Context, presented, subjectID string) (Principal, error) {
	if e == nil || e.store == nil {
		return Principal{}, ErrEngineNotReady
	}

	res := flows.RunVerifyRefresh(ctx, presented, subjectID, e.flowsDeps.Refresh)
	if err := e.refreshFailure(ctx, res); err != nil {
		return Principal{}, err
	}
	return res.Principal, nil
}

func (e *Engine) refreshFailure(ctx context.Context, res flows.RefreshResult) error {
	if res.Failure == flows.RefreshFailureNone {
		return nil
	}

	e.metricInc(MetricRefreshFailure)
	reason := res.Failure.String()
	switch res.Failure {
	case flows.RefreshFailureReuse:
		e.metricInc(MetricRefreshReuseDetected)
		e.emitAudit(ctx, internalaudit.EventRefreshReuseDetected, false, res.SubjectID, reason, nil)
	case flows.RefreshFailureExpired:
		e.metricInc(MetricRefreshExpired)
		e.emitAudit(ctx, internalaudit.EventRefreshInvalid, false, res.SubjectID, reason, nil)
	default:
		e.emitAudit(ctx, internalaudit.EventRefreshInvalid, false, res.SubjectID, reason, nil)
	}

	if res.Failure.Internal() {
		e.logger.Error("refresh failed",
			zap.String("reason", reason),
			zap.String("subject_id", res.SubjectID),
			zap.Error(res.Err),
		)
		return ErrInternal
	}
	e.logger.Info("refresh rejected",
		zap.String("reason", reason),
		zap.String("subject_id", res.SubjectID),
	)
	return ErrInvalidRefreshToken
}
