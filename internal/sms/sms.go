// Package sms provides the carrier dispatch gateway.
package sms

import (
	"context"
	"fmt"
	"time"
)

// Receipt is the carrier's acknowledgment of an accepted message.
type Receipt struct {
	SID       string    `json:"sid"`
	To        string    `json:"to"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Sender delivers an SMS to a phone number from the configured sender
// number. Implementations log failures and return them; callers decide
// how to degrade.
type Sender interface {
	Send(ctx context.Context, to, body string) (*Receipt, error)
}

// DispatchError is returned when the carrier rejects or fails a send.
type DispatchError struct {
	To         string
	StatusCode int
	Reason     string
	Err        error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sms dispatch to %s failed: %v", e.To, e.Err)
	}
	return fmt.Sprintf("sms dispatch to %s failed: %d %s", e.To, e.StatusCode, e.Reason)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
