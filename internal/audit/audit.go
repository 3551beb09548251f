// Package audit emits the access-decision trail. Every grant issued, policy
// written, and read allowed or denied produces one event line carrying the
// request id and acting principal, so an investigation can replay who touched
// which object and on what basis.
package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/logging"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// requestIDFromContext extracts the audit request id from context if present.
func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit entry enriched with request and principal context.
// The event name is the log message; extra args are key-value pairs.
func LogEvent(ctx context.Context, log logging.Logger, event string, args ...any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}

	log.Info(ctx, event, enrich(ctx, args)...)
	return nil
}

// LogError writes an audit entry at error severity. Used for integrity
// violations such as ownership conflicts, which rank above ordinary denials.
func LogError(ctx context.Context, log logging.Logger, event string, args ...any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}

	log.Error(ctx, event, enrich(ctx, args)...)
	return nil
}

func enrich(ctx context.Context, args []any) []any {
	attrs := []any{"type", "audit"}
	if rid := requestIDFromContext(ctx); rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		attrs = append(attrs, "user_id", p.ID, "role", string(p.Role))
	}
	return append(attrs, args...)
}
