package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

const DefaultUsersCollection = "users_v2"

// DefaultTokenFields lists the accepted token array fields in precedence order.
var DefaultTokenFields = []string{"fcmTokens", "deviceTokens"}

// RecipientStore implements dispatch.RecipientStore using Google Cloud Firestore.
// Recipients are documents at {collection}/{recipientID}.
type RecipientStore struct {
	client      *firestore.Client
	collection  string
	tokenFields []string
}

func NewRecipientStore(client *firestore.Client, collection string, tokenFields []string) *RecipientStore {
	if collection == "" {
		collection = DefaultUsersCollection
	}
	if len(tokenFields) == 0 {
		tokenFields = DefaultTokenFields
	}
	return &RecipientStore{
		client:      client,
		collection:  collection,
		tokenFields: tokenFields,
	}
}

func (s *RecipientStore) Lookup(ctx context.Context, recipientID string) (*dispatch.Recipient, error) {
	snap, err := s.client.Collection(s.collection).Doc(recipientID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, dispatch.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("recipient lookup failed: %w", err)
	}
	if !snap.Exists() {
		return nil, dispatch.ErrRecipientNotFound
	}

	return &dispatch.Recipient{
		ID:     recipientID,
		Tokens: ExtractTokens(snap.Data(), s.tokenFields),
	}, nil
}

// ExtractTokens reads the first field in fields that holds at least one
// usable token. Non-string and empty entries are dropped; duplicates are kept.
func ExtractTokens(data map[string]interface{}, fields []string) []string {
	for _, field := range fields {
		raw, ok := data[field].([]interface{})
		if !ok {
			continue
		}
		tokens := make([]string, 0, len(raw))
		for _, v := range raw {
			if t, ok := v.(string); ok && t != "" {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) > 0 {
			return tokens
		}
	}
	return nil
}
