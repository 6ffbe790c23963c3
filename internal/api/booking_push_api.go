package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-platform/pkg/notification/v1"

	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgMissingBearer    = "Missing bearer token"
	msgMissingFields    = "Missing required fields"
	msgNotFound         = "Recipient not found"

	reasonNoTokens = "no_tokens"
	bearerPrefix   = "Bearer "

	// eventPublishTimeout bounds how long a Pub/Sub ack may hold the response.
	eventPublishTimeout = 2 * time.Second
)

// requiredFields are lifted out of the body; every other key is an extra.
var requiredFields = map[string]struct{}{
	"recipientId": {},
	"type":        {},
	"title":       {},
	"body":        {},
	"bookingId":   {},
}

var errTrailingData = errors.New("unexpected data after JSON value")

type errorResponse struct {
	Error string `json:"error"`
}

type dispatchResponse struct {
	OK     bool   `json:"ok"`
	Sent   int    `json:"sent"`
	Failed *int   `json:"failed,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// BookingPushAPI relays a booking event from one user to another user's devices.
type BookingPushAPI struct {
	verifier   dispatch.IdentityVerifier
	store      dispatch.RecipientStore
	dispatcher dispatch.Dispatcher
	events     dispatch.EventPublisher
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewBookingPushAPI wires the handler. events may be nil.
func NewBookingPushAPI(
	verifier dispatch.IdentityVerifier,
	store dispatch.RecipientStore,
	dispatcher dispatch.Dispatcher,
	events dispatch.EventPublisher,
	logger *slog.Logger,
) *BookingPushAPI {
	return &BookingPushAPI{
		verifier:   verifier,
		store:      store,
		dispatcher: dispatcher,
		events:     events,
		validate:   validator.New(),
		logger:     logger.With("component", "BookingPushAPI"),
	}
}

// SendBookingPush handles POST requests. Checks short-circuit in order:
// method, bearer header, token verification, required fields, recipient
// lookup, tokens present. Anything unexpected is reported as a 500 carrying
// the error text.
func (a *BookingPushAPI) SendBookingPush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	idToken, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, http.StatusUnauthorized, msgMissingBearer)
		return
	}

	ctx := r.Context()
	log := a.logger.With("dispatch_id", uuid.NewString())

	// A rejected token is a system error here, not a 401.
	identity, err := a.verifier.Verify(ctx, idToken)
	if err != nil {
		a.fail(w, log, err)
		return
	}

	fields, err := decodeBody(r.Body)
	if err != nil {
		a.fail(w, log, err)
		return
	}

	req := newBookingPushRequest(fields)
	if err := a.validate.Struct(req); err != nil {
		log.Debug("Rejected booking push", "reason", "missing fields", "err", err)
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	log = log.With("recipient_id", req.RecipientID, "booking_id", req.BookingID, "caller", identity.UID)

	recipient, err := a.store.Lookup(ctx, req.RecipientID)
	if errors.Is(err, dispatch.ErrRecipientNotFound) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		a.fail(w, log, err)
		return
	}

	if len(recipient.Tokens) == 0 {
		log.Info("Recipient has no device tokens; nothing sent")
		response.WriteJSON(w, http.StatusOK, dispatchResponse{OK: true, Sent: 0, Reason: reasonNoTokens})
		return
	}

	content := notification.NotificationContent{
		Title: req.Title,
		Body:  req.Body,
		Sound: dispatch.DefaultSound,
	}
	result, err := a.dispatcher.Dispatch(ctx, recipient.Tokens, content, req.DataPayload())
	if err != nil {
		a.fail(w, log, err)
		return
	}
	log.Info("Booking push dispatched", "type", req.Type, "sent", result.Success, "failed", result.Failure)

	a.publish(ctx, log, req, identity, result)

	failed := result.Failure
	response.WriteJSON(w, http.StatusOK, dispatchResponse{OK: true, Sent: result.Success, Failed: &failed})
}

func (a *BookingPushAPI) publish(ctx context.Context, log *slog.Logger, req *dispatch.BookingPushRequest, identity dispatch.Identity, result dispatch.Result) {
	if a.events == nil {
		return
	}
	event := dispatch.DispatchEvent{
		ID:           uuid.NewString(),
		RecipientID:  req.RecipientID,
		BookingID:    req.BookingID,
		Type:         req.Type,
		Sent:         result.Success,
		Failed:       result.Failure,
		CallerUID:    identity.UID,
		DispatchedAt: time.Now().UTC(),
	}
	publishCtx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()
	if err := a.events.Publish(publishCtx, event); err != nil {
		log.Warn("Failed to publish dispatch event", "event_id", event.ID, "err", err)
	}
}

// fail logs the full error chain and writes only the innermost message,
// keeping adapter context out of the response.
func (a *BookingPushAPI) fail(w http.ResponseWriter, log *slog.Logger, err error) {
	log.Error("booking push failed", "err", err)
	writeError(w, http.StatusInternalServerError, rootMessage(err))
}

func rootMessage(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}
		err = inner
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	response.WriteJSON(w, status, errorResponse{Error: msg})
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	return token, token != ""
}

// decodeBody reads the JSON object. An empty body, null, or a non-object
// value decodes to an empty field set; broken JSON is an error.
func decodeBody(body io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("malformed request body: %w", err)
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("malformed request body: %w", errTrailingData)
	}
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}, nil
	}
	return fields, nil
}

func newBookingPushRequest(fields map[string]interface{}) *dispatch.BookingPushRequest {
	str := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}
	req := &dispatch.BookingPushRequest{
		RecipientID: str("recipientId"),
		Type:        str("type"),
		Title:       str("title"),
		Body:        str("body"),
		BookingID:   str("bookingId"),
		Extra:       make(map[string]string, len(fields)),
	}
	for k, v := range fields {
		if _, required := requiredFields[k]; required {
			continue
		}
		req.Extra[k] = stringify(v)
	}
	return req
}

// stringify renders an extra field's value the way a JavaScript String()
// call would, so clients see the same data strings as before.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return formatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			// Array joins render null elements as empty strings.
			if elem != nil {
				parts[i] = stringify(elem)
			}
		}
		return strings.Join(parts, ",")
	case map[string]interface{}:
		return "[object Object]"
	default:
		return fmt.Sprint(val)
	}
}

// formatNumber prints the shortest round-trip decimal, switching to
// exponent form outside [1e-6, 1e21).
func formatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil && !math.IsInf(f, 0) {
		return n.String()
	}
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		out := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(out, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
