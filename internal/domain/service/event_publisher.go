package service

import (
	"context"
)

// Account event kinds.
const (
	EventAccountCreated = "account.created"
	EventAccountLogin   = "account.login"
	EventAccountLogout  = "account.logout"
)

// AccountEvent is published whenever an account is created or a session is
// established or destroyed. Consumers are audit and analytics pipelines;
// publishing is best-effort and never blocks the auth flow.
type AccountEvent struct {
	RequestID string `json:"request_id,omitempty"` // For distributed tracing.
	AccountID string `json:"account_id"`
	Provider  string `json:"provider"` // Credential path that produced the event.
	Kind      string `json:"kind"`     // One of the Event* constants.
}

// EventPublisher defines the interface for publishing auth events to a message queue.
type EventPublisher interface {
	// PublishAccountEvent publishes an account lifecycle event for async processing.
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
