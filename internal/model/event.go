package model

import (
	"time"
)

// MessageEvent is the audit record published to the event stream for
// every message the service sends or receives. Downstream consumers
// (CRM sync, analytics) read these; the service itself never does.
type MessageEvent struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Direction Direction `json:"direction"`
	Body      string    `json:"body"`
	Context   string    `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
