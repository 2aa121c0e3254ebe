package goSession

import (
	"context"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"go.uber.org/zap"
)

// Login authenticates creds, issues a token pair and stores the refresh
// token as the subject's only live session, replacing any earlier one.
//
// An unknown e-mail and a wrong password both return ErrInvalidCredentials.
// Infrastructure faults return ErrInternal. Cookies reach sink only after
// the refresh record is stored.
func (e *Engine) Login(ctx context.Context, creds Credentials, sink CookieSink) (*LoginResult, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, creds.Email, creds.Password, e.flowsDeps.Login)
	if res.Failure != flows.LoginFailureNone {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, internalaudit.EventLoginFailure, false, res.Principal.ID, res.Failure.String(), func() map[string]string {
			return map[string]string{"email": creds.Email}
		})
		if res.Failure.Internal() {
			e.logger.Error("login failed",
				zap.String("reason", res.Failure.String()),
				zap.String("subject_id", res.Principal.ID),
				zap.Error(res.Err),
			)
			return nil, ErrInternal
		}
		return nil, ErrInvalidCredentials
	}

	if res.Upgraded {
		e.metricInc(MetricPasswordHashUpgraded)
	}
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, internalaudit.EventLoginSuccess, true, res.Principal.ID, "", nil)
	e.emitPair(sink, res.Tokens)

	out := &LoginResult{
		Principal: viewOf(res.Principal),
		Tokens:    res.Tokens,
	}
	if creds.Redirect {
		out.RedirectTo = e.config.Cookie.RedirectPath
	}
	return out, nil
}
