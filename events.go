package auth

import (
	"context"
	"fmt"
	"strings"
)

// Event is a domain event emitted by the authentication flows. Consumers
// (typically a mail dispatcher) subscribe through a NotificationSink.
type Event interface {
	Type() string
}

// VerificationRequestedEvent asks the dispatcher to send a verification link.
type VerificationRequestedEvent struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

func (VerificationRequestedEvent) Type() string { return "auth.verification_requested" }

// ResetRequestedEvent asks the dispatcher to send a password reset link.
type ResetRequestedEvent struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

func (ResetRequestedEvent) Type() string { return "auth.reset_requested" }

// ChangeConfirmationRequestedEvent asks the dispatcher to send the step-up
// confirmation link used by the change password flow.
type ChangeConfirmationRequestedEvent struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

func (ChangeConfirmationRequestedEvent) Type() string { return "auth.change_confirmation_requested" }

// SecurityUpdateEvent records a security-sensitive account change.
type SecurityUpdateEvent struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

func (SecurityUpdateEvent) Type() string { return "auth.security_update" }

// NotificationSink consumes emitted events. Delivery is best effort and
// asynchronous from the caller's perspective; sink errors never fail the
// triggering operation.
type NotificationSink interface {
	Emit(ctx context.Context, event Event) error
}

// NotificationSinkFunc adapts a function to the NotificationSink interface.
type NotificationSinkFunc func(ctx context.Context, event Event) error

// Emit implements NotificationSink.
func (f NotificationSinkFunc) Emit(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopNotificationSink struct{}

func (noopNotificationSink) Emit(context.Context, Event) error { return nil }

func normalizeNotificationSink(s NotificationSink) NotificationSink {
	if s == nil {
		return noopNotificationSink{}
	}
	return s
}

const (
	verifyEmailRoute   = "auth/email/verify"
	passwordResetRoute = "auth/reset-password"
)

// embedTokenIntoURL builds the link sent in notification emails. The raw
// token only ever travels through this URL and the client response.
func embedTokenIntoURL(cfg Config, route, rawToken string) string {
	base := strings.TrimSuffix(cfg.GetBaseURL(), "/")
	prefix := strings.Trim(cfg.GetAPIPrefix(), "/")

	if prefix == "" {
		return fmt.Sprintf("%s/%s?token=%s", base, route, rawToken)
	}

	return fmt.Sprintf("%s/%s/%s?token=%s", base, prefix, route, rawToken)
}
