package model

import (
	"time"

	"github.com/google/uuid"
)

// Direction indicates which way a message travelled.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Message is a single transcript entry. Immutable once appended;
// transcript order is chronological.
type Message struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a transcript entry with a fresh ID.
func NewMessage(direction Direction, body string) Message {
	return Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Direction: direction,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// DispatchStatus classifies the outcome of an inbound-webhook exchange.
type DispatchStatus string

const (
	DispatchSent         DispatchStatus = "sent"
	DispatchFailed       DispatchStatus = "failed"
	DispatchShortCircuit DispatchStatus = "shortcircuit"
)

// InboundResult is the typed outcome of handling an inbound message.
// The webhook handler always acknowledges the carrier regardless of
// this result; failures are recorded here instead of being raised, so
// the carrier never retries into an internal outage.
type InboundResult struct {
	Status DispatchStatus `json:"status"`
	Reply  string         `json:"reply,omitempty"`
	Err    error          `json:"-"`
}
