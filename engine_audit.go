package goSession

import (
	"context"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
)

// emitAudit records an event when auditing is enabled. reason is the
// internal failure code; it is kept out of every public error.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	reason string,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	now := e.now().UTC()
	e.audit.Emit(ctx, AuditEvent{
		ID:        internalaudit.NewEventID(now),
		Timestamp: now,
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Error:     reason,
		Metadata:  metadata,
	})
}
