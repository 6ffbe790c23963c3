// Package firebaseauth verifies caller ID tokens against Firebase Auth.
package firebaseauth

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

// TokenVerifier is the subset of *auth.Client we use.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Verifier struct {
	client TokenVerifier
	logger *slog.Logger
}

func NewVerifier(client TokenVerifier, logger *slog.Logger) *Verifier {
	return &Verifier{
		client: client,
		logger: logger.With("component", "FirebaseVerifier"),
	}
}

func (v *Verifier) Verify(ctx context.Context, idToken string) (dispatch.Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return dispatch.Identity{}, fmt.Errorf("id token verification failed: %w", err)
	}
	if token == nil {
		return dispatch.Identity{}, fmt.Errorf("id token verification returned no token")
	}
	v.logger.Debug("Caller verified", "uid", token.UID)
	return dispatch.Identity{UID: token.UID}, nil
}
