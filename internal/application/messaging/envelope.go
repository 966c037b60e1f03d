package messaging

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EnvelopeVersion = 1
	Producer        = "listing-service"
)

// Routing keys emitted through the outbox.
const (
	RKEventUpdated        = "event.updated"
	RKEventPublished      = "event.published"
	RKEventRejected       = "event.rejected"
	RKEventReviewCanceled = "event.review_canceled"

	RKRequestCreated   = "request.created"
	RKRequestConfirmed = "request.confirmed"
	RKRequestRejected  = "request.rejected"
	RKRequestCanceled  = "request.canceled"
)

// DomainEventEnvelope is the stable contract for all messages emitted by listing-service.
// Consumers should rely on: version/producer/message_id/occurred_at + payload.
type DomainEventEnvelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	MessageID  string    `json:"message_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// OutboxMessage is a row written in the same transaction as the state change it describes.
type OutboxMessage struct {
	MessageID  string
	RoutingKey string
	Body       []byte
	CreatedAt  time.Time
}

// NewOutboxMessage wraps payload in an envelope and encodes it for the outbox.
func NewOutboxMessage[T any](ctx context.Context, routingKey string, payload T, now time.Time) (OutboxMessage, error) {
	messageID := uuid.NewString()
	env := DomainEventEnvelope[T]{
		Version:    EnvelopeVersion,
		Producer:   Producer,
		MessageID:  messageID,
		TraceID:    TraceIDFromContext(ctx),
		OccurredAt: now.UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return OutboxMessage{}, err
	}
	return OutboxMessage{
		MessageID:  messageID,
		RoutingKey: routingKey,
		Body:       body,
		CreatedAt:  now.UTC(),
	}, nil
}

// EventStatePayload is the business payload for event.* routing keys.
type EventStatePayload struct {
	EventID          string     `json:"event_id"`
	InitiatorID      string     `json:"initiator_id"`
	CategoryID       string     `json:"category_id"`
	Title            string     `json:"title"`
	EventDate        time.Time  `json:"event_date"`
	ParticipantLimit int        `json:"participant_limit"`
	State            string     `json:"state"`
	PublishedOn      *time.Time `json:"published_on,omitempty"`
	ActorRole        string     `json:"actor_role,omitempty"`
}

// RequestStatusPayload is the business payload for request.* routing keys.
type RequestStatusPayload struct {
	RequestID   string `json:"request_id"`
	EventID     string `json:"event_id"`
	RequesterID string `json:"requester_id"`
	Status      string `json:"status"`
}

// ---- trace id plumbing ----
// The transport layer stores the request id in context; envelopes carry it as trace_id.
type ctxKey string

const ctxRequestID ctxKey = "request_id"

func WithRequestID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxRequestID, id)
}

func TraceIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxRequestID); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
