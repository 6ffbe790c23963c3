// Package dispatch holds the contracts and domain types shared by the booking
// push handler and its platform adapters.
package dispatch

import (
	"context"

	"github.com/tinywideclouds/go-platform/pkg/notification/v1"
)

// IdentityVerifier checks a caller's bearer credential.
type IdentityVerifier interface {
	// Verify decodes the token or returns an error if it is not valid.
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// RecipientStore resolves a recipient id to the devices registered for it.
type RecipientStore interface {
	// Lookup returns ErrRecipientNotFound when no record exists for the id.
	Lookup(ctx context.Context, recipientID string) (*Recipient, error)
}

// Dispatcher defines the contract for a component that can send notifications
// to a batch of device tokens in a single multicast call.
type Dispatcher interface {
	// Dispatch returns per-token outcome counts. Partial per-token failure is
	// not an error; only a request-level failure is.
	Dispatch(ctx context.Context, tokens []string, content notification.NotificationContent, data map[string]string) (Result, error)
}

// EventPublisher announces completed dispatches to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event DispatchEvent) error
}
