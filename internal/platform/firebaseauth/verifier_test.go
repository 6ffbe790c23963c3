package firebaseauth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-booking-push-service/internal/platform/firebaseauth"
)

type mockTokenVerifier struct {
	mock.Mock
}

func (m *mockTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func TestVerifier_Verify(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success - returns uid", func(t *testing.T) {
		client := new(mockTokenVerifier)
		client.On("VerifyIDToken", ctx, "good-token").Return(&auth.Token{UID: "caller-1"}, nil)

		identity, err := firebaseauth.NewVerifier(client, logger).Verify(ctx, "good-token")

		require.NoError(t, err)
		assert.Equal(t, "caller-1", identity.UID)
		client.AssertExpectations(t)
	})

	t.Run("Failure - wraps the platform error", func(t *testing.T) {
		client := new(mockTokenVerifier)
		cause := errors.New("ID token has expired")
		client.On("VerifyIDToken", ctx, "stale-token").Return(nil, cause)

		_, err := firebaseauth.NewVerifier(client, logger).Verify(ctx, "stale-token")

		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "ID token has expired")
	})
}
