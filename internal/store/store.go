// Package store provides the keyed conversation store.
package store

import (
	"github.com/clearview-home/sms-concierge/internal/model"
)

// Store is a keyed, lazily populated conversation store. Update is the
// only way to mutate a conversation: implementations serialize updates
// per phone number so concurrent read-modify-write sequences for the
// same number cannot lose an append.
type Store interface {
	// Get returns a copy of the conversation, or false if absent.
	Get(phone string) (*model.Conversation, bool)

	// Put replaces the conversation for a phone number.
	Put(phone string, conv *model.Conversation)

	// Update runs fn against the conversation for phone, creating it
	// with create() if absent. fn runs under the per-phone lock.
	Update(phone string, create func() *model.Conversation, fn func(conv *model.Conversation))

	// All returns a snapshot of every conversation keyed by phone.
	All() map[string]*model.Conversation

	// Len returns the number of conversations.
	Len() int
}
