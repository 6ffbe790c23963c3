//go:build integration

package firestore_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/go-test/emulators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fs "github.com/tinywideclouds/go-booking-push-service/internal/storage/firestore"
	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

func setupSuite(t *testing.T) (context.Context, *firestore.Client, *fs.RecipientStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	projectID := "test-recipient-store"
	conn := emulators.SetupFirestoreEmulator(t, ctx, emulators.GetDefaultFirestoreConfig(projectID))
	client, err := firestore.NewClient(ctx, projectID, conn.ClientOptions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := fs.NewRecipientStore(client, "", nil)
	return ctx, client, store
}

func TestRecipientStore_Integration(t *testing.T) {
	ctx, client, store := setupSuite(t)
	users := client.Collection(fs.DefaultUsersCollection)

	t.Run("Reads fcmTokens", func(t *testing.T) {
		_, err := users.Doc("u1").Set(ctx, map[string]interface{}{
			"fcmTokens": []string{"t1", "t2"},
		})
		require.NoError(t, err)

		recipient, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", recipient.ID)
		assert.Equal(t, []string{"t1", "t2"}, recipient.Tokens)
	})

	t.Run("Falls back to deviceTokens", func(t *testing.T) {
		_, err := users.Doc("u2").Set(ctx, map[string]interface{}{
			"deviceTokens": []string{"d1", ""},
		})
		require.NoError(t, err)

		recipient, err := store.Lookup(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"d1"}, recipient.Tokens)
	})

	t.Run("Existing recipient without tokens", func(t *testing.T) {
		_, err := users.Doc("u3").Set(ctx, map[string]interface{}{"name": "no devices"})
		require.NoError(t, err)

		recipient, err := store.Lookup(ctx, "u3")
		require.NoError(t, err)
		assert.Empty(t, recipient.Tokens)
	})

	t.Run("Missing recipient", func(t *testing.T) {
		_, err := store.Lookup(ctx, "nobody")
		assert.ErrorIs(t, err, dispatch.ErrRecipientNotFound)
	})
}
