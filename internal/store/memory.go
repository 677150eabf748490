package store

import (
	"sync"

	"github.com/clearview-home/sms-concierge/internal/model"
)

// DefaultMaxTranscript caps how many messages a conversation retains.
const DefaultMaxTranscript = 200

// Memory is an in-process Store. The outer lock guards the map
// structure only; each conversation carries its own lock so updates
// for different phone numbers do not contend.
type Memory struct {
	mu            sync.RWMutex
	entries       map[string]*entry
	maxTranscript int
}

type entry struct {
	mu   sync.Mutex
	conv *model.Conversation
}

// NewMemory creates an in-process store. maxTranscript bounds the
// transcript length per conversation; zero or negative applies
// DefaultMaxTranscript.
func NewMemory(maxTranscript int) *Memory {
	if maxTranscript <= 0 {
		maxTranscript = DefaultMaxTranscript
	}
	return &Memory{
		entries:       make(map[string]*entry),
		maxTranscript: maxTranscript,
	}
}

// Get returns a copy of the conversation for a phone number.
func (m *Memory) Get(phone string) (*model.Conversation, bool) {
	m.mu.RLock()
	e, ok := m.entries[phone]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conv == nil {
		return nil, false
	}
	return cloneConversation(e.conv), true
}

// Put replaces the conversation for a phone number.
func (m *Memory) Put(phone string, conv *model.Conversation) {
	e := m.entry(phone)
	e.mu.Lock()
	e.conv = cloneConversation(conv)
	e.mu.Unlock()
}

// Update runs fn under the per-phone lock, creating the conversation
// with create() when the number has not been seen before. The
// transcript is trimmed to the configured cap after fn returns.
func (m *Memory) Update(phone string, create func() *model.Conversation, fn func(conv *model.Conversation)) {
	e := m.entry(phone)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conv == nil {
		e.conv = create()
	}
	fn(e.conv)

	if over := len(e.conv.Messages) - m.maxTranscript; over > 0 {
		e.conv.Messages = append([]model.Message(nil), e.conv.Messages[over:]...)
	}
}

// All returns a snapshot of every conversation keyed by phone number.
func (m *Memory) All() map[string]*model.Conversation {
	m.mu.RLock()
	keys := make([]string, 0, len(m.entries))
	for phone := range m.entries {
		keys = append(keys, phone)
	}
	m.mu.RUnlock()

	out := make(map[string]*model.Conversation, len(keys))
	for _, phone := range keys {
		if conv, ok := m.Get(phone); ok {
			out[phone] = conv
		}
	}
	return out
}

// Len returns the number of conversations in the store.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// entry returns the per-phone entry, creating it if needed. The entry
// may exist with a nil conversation until the first Update or Put.
func (m *Memory) entry(phone string) *entry {
	m.mu.RLock()
	e, ok := m.entries[phone]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.entries[phone]; ok {
		return e
	}
	e = &entry{}
	m.entries[phone] = e
	return e
}

func cloneConversation(c *model.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = append([]model.Message(nil), c.Messages...)
	return &out
}
