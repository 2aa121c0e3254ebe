package goSession

import (
	"context"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"go.uber.org/zap"
)

// Logout deletes the subject's refresh record and clears both cookies.
// Logging out a subject with no live session succeeds. If the store cannot
// be reached, ErrInternal is returned and the cookies are left alone.
func (e *Engine) Logout(ctx context.Context, subjectID string, sink CookieSink) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if err := flows.RunLogout(ctx, subjectID, e.flowsDeps.Logout); err != nil {
		e.metricInc(MetricLogoutFailure)
		e.logger.Error("logout failed", zap.String("subject_id", subjectID), zap.Error(err))
		e.emitAudit(ctx, internalaudit.EventLogout, false, subjectID, "store_failed", nil)
		return ErrInternal
	}

	e.metricInc(MetricLogoutSuccess)
	e.emitAudit(ctx, internalaudit.EventLogout, true, subjectID, "", nil)
	e.clearPair(sink)
	return nil
}
