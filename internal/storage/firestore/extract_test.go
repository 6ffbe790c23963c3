package firestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	fs "github.com/tinywideclouds/go-booking-push-service/internal/storage/firestore"
)

func TestExtractTokens(t *testing.T) {
	testCases := []struct {
		name     string
		data     map[string]interface{}
		expected []string
	}{
		{
			name:     "Primary field",
			data:     map[string]interface{}{"fcmTokens": []interface{}{"t1", "t2"}},
			expected: []string{"t1", "t2"},
		},
		{
			name:     "Fallback field",
			data:     map[string]interface{}{"deviceTokens": []interface{}{"d1"}},
			expected: []string{"d1"},
		},
		{
			name: "Primary wins when both present",
			data: map[string]interface{}{
				"fcmTokens":    []interface{}{"t1"},
				"deviceTokens": []interface{}{"d1"},
			},
			expected: []string{"t1"},
		},
		{
			name: "Empty primary falls through",
			data: map[string]interface{}{
				"fcmTokens":    []interface{}{"", nil},
				"deviceTokens": []interface{}{"d1"},
			},
			expected: []string{"d1"},
		},
		{
			name:     "Falsy and non-string entries filtered",
			data:     map[string]interface{}{"fcmTokens": []interface{}{"t1", "", nil, int64(4), false, "t2"}},
			expected: []string{"t1", "t2"},
		},
		{
			name:     "Duplicates kept",
			data:     map[string]interface{}{"fcmTokens": []interface{}{"t1", "t1"}},
			expected: []string{"t1", "t1"},
		},
		{
			name:     "Wrong type ignored",
			data:     map[string]interface{}{"fcmTokens": "t1"},
			expected: nil,
		},
		{
			name:     "No token fields",
			data:     map[string]interface{}{"name": "Ada"},
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, fs.ExtractTokens(tc.data, fs.DefaultTokenFields))
		})
	}
}
