// Package model defines data structures for the SMS concierge service.
package model

import (
	"time"
)

// Conversation is the per-phone-number record of contact metadata and
// message transcript. Phone numbers are stored as received (E.164-like).
type Conversation struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Context   string    `json:"context"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// DefaultName is used when a conversation is created from an inbound
// message and no customer name is known.
const DefaultName = "Customer"

// DefaultContext labels conversations started by an unknown inbound number.
const DefaultContext = "General inquiry"

// NewConversation creates an empty conversation for a phone number.
func NewConversation(phone, name, context string) *Conversation {
	if name == "" {
		name = DefaultName
	}
	if context == "" {
		context = DefaultContext
	}
	return &Conversation{
		Phone:     phone,
		Name:      name,
		Context:   context,
		CreatedAt: time.Now().UTC(),
		Messages:  []Message{},
	}
}

// Summary is the bounded listing view of a conversation. It never
// carries the transcript, only the count and the most recent message.
type Summary struct {
	Name         string    `json:"name"`
	Context      string    `json:"context"`
	StartedAt    time.Time `json:"started_at"`
	MessageCount int       `json:"message_count"`
	LastMessage  *Message  `json:"last_message,omitempty"`
}

// Summarize builds the listing view of a conversation.
func (c *Conversation) Summarize() Summary {
	s := Summary{
		Name:         c.Name,
		Context:      c.Context,
		StartedAt:    c.CreatedAt,
		MessageCount: len(c.Messages),
	}
	if n := len(c.Messages); n > 0 {
		last := c.Messages[n-1]
		s.LastMessage = &last
	}
	return s
}

// InitiateContactRequest is the trigger payload that starts a conversation.
type InitiateContactRequest struct {
	CustomerPhone  string `json:"customer_phone"`
	CustomerName   string `json:"customer_name"`
	TriggerContext string `json:"trigger_context"`
}

// InitiateContactResponse is returned to the automation trigger.
type InitiateContactResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	InitialMessage string `json:"initialMessage"`
}
