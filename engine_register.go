package goSession

import (
	"context"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"go.uber.org/zap"
)

// Register creates a principal with an argon2id password hash. It does not
// log the new account in.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (PrincipalView, error) {
	if e == nil {
		return PrincipalView{}, ErrEngineNotReady
	}
	if e.creator == nil {
		return PrincipalView{}, ErrAccountCreationDisabled
	}

	res := flows.RunRegister(ctx, flows.RegisterRequest{
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	}, e.flowsDeps.Register)

	if res.Failure == flows.RegisterFailureNone {
		e.metricInc(MetricAccountCreationSuccess)
		e.emitAudit(ctx, internalaudit.EventAccountCreated, true, res.Principal.ID, "", func() map[string]string {
			return map[string]string{"role": res.Principal.Role}
		})
		return viewOf(res.Principal), nil
	}

	e.emitAudit(ctx, internalaudit.EventAccountCreationFailure, false, "", res.Failure.String(), nil)
	switch res.Failure {
	case flows.RegisterFailureDuplicate:
		e.metricInc(MetricAccountCreationDuplicate)
		return PrincipalView{}, ErrAccountExists
	case flows.RegisterFailureInvalidEmail, flows.RegisterFailureWeakPassword:
		e.metricInc(MetricAccountCreationFailure)
		return PrincipalView{}, ErrAccountCreationInvalid
	case flows.RegisterFailureInvalidRole:
		e.metricInc(MetricAccountCreationFailure)
		return PrincipalView{}, ErrAccountRoleInvalid
	default:
		e.metricInc(MetricAccountCreationFailure)
		e.logger.Error("account creation failed",
			zap.String("reason", res.Failure.String()),
			zap.Error(res.Err),
		)
		return PrincipalView{}, ErrInternal
	}
}
