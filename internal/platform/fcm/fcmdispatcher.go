// Package fcm sends booking pushes through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-platform/pkg/notification/v1"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it.
type MessagingClient interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Dispatcher struct {
	client MessagingClient
	logger *slog.Logger
}

func NewDispatcher(client MessagingClient, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger.With("component", "FCMDispatcher"),
	}
}

// Dispatch sends one multicast to all tokens. Duplicate tokens are forwarded as given.
func (d *Dispatcher) Dispatch(ctx context.Context, tokens []string, content notification.NotificationContent, data map[string]string) (dispatch.Result, error) {
	if len(tokens) == 0 {
		return dispatch.Result{}, nil
	}

	br, err := d.client.SendEachForMulticast(ctx, NewMulticastMessage(tokens, content, data))
	if err != nil {
		return dispatch.Result{}, fmt.Errorf("fcm multicast failed: %w", err)
	}

	if br.FailureCount > 0 {
		unregistered := 0
		for _, resp := range br.Responses {
			if resp != nil && !resp.Success && messaging.IsRegistrationTokenNotRegistered(resp.Error) {
				unregistered++
			}
		}
		d.logger.Debug("Multicast had per-token failures",
			"failed", br.FailureCount,
			"unregistered", unregistered,
		)
	}

	return dispatch.Result{Success: br.SuccessCount, Failure: br.FailureCount}, nil
}

// NewMulticastMessage builds the FCM payload. The sound hint is carried in
// the APNs block; Android uses the notification defaults.
func NewMulticastMessage(tokens []string, content notification.NotificationContent, data map[string]string) *messaging.MulticastMessage {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   data,
		Notification: &messaging.Notification{
			Title: content.Title,
			Body:  content.Body,
		},
	}
	if content.Sound != "" {
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: content.Sound},
			},
		}
	}
	return msg
}
