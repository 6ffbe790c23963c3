package dispatch

import (
	"errors"
	"time"
)

// ErrRecipientNotFound is returned by a RecipientStore when the recipient has no record.
var ErrRecipientNotFound = errors.New("recipient not found")

// DefaultSound is the platform delivery hint requested for every booking push.
const DefaultSound = "default"

// Identity is the decoded form of a verified caller credential.
type Identity struct {
	UID string
}

// Recipient is the read-only view of a recipient record.
type Recipient struct {
	ID     string   `json:"id"`
	Tokens []string `json:"tokens"`
}

// BookingPushRequest is the validated inbound payload. Extra holds every
// caller-supplied key that is not one of the required fields, already
// converted to text.
type BookingPushRequest struct {
	RecipientID string `validate:"required"`
	Type        string `validate:"required"`
	Title       string `validate:"required"`
	Body        string `validate:"required"`
	BookingID   string `validate:"required"`
	Extra       map[string]string
}

// DataPayload builds the string map forwarded as message metadata. The
// required keys are written last so extras can never replace them.
func (r *BookingPushRequest) DataPayload() map[string]string {
	data := make(map[string]string, len(r.Extra)+3)
	for k, v := range r.Extra {
		data[k] = v
	}
	data["type"] = r.Type
	data["bookingId"] = r.BookingID
	data["recipientId"] = r.RecipientID
	return data
}

// Result carries the gateway's per-token delivery counts.
type Result struct {
	Success int
	Failure int
}

// DispatchEvent records one completed multicast.
type DispatchEvent struct {
	ID           string    `json:"id"`
	RecipientID  string    `json:"recipientId"`
	BookingID    string    `json:"bookingId"`
	Type         string    `json:"type"`
	Sent         int       `json:"sent"`
	Failed       int       `json:"failed"`
	CallerUID    string    `json:"callerUid,omitempty"`
	DispatchedAt time.Time `json:"dispatchedAt"`
}
