package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearview-home/sms-concierge/internal/model"
)

func TestMemory_GetAbsent(t *testing.T) {
	m := NewMemory(0)

	conv, ok := m.Get("+15551234567")
	assert.False(t, ok)
	assert.Nil(t, conv)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_PutAndGet(t *testing.T) {
	m := NewMemory(0)

	conv := model.NewConversation("+15551234567", "Jane", "blind install quote")
	m.Put("+15551234567", conv)

	got, ok := m.Get("+15551234567")
	require.True(t, ok)
	assert.Equal(t, "Jane", got.Name)
	assert.Equal(t, "blind install quote", got.Context)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory(0)
	m.Put("+15551234567", model.NewConversation("+15551234567", "Jane", ""))

	got, ok := m.Get("+15551234567")
	require.True(t, ok)
	got.Name = "mutated"
	got.Messages = append(got.Messages, model.NewMessage(model.DirectionInbound, "hi"))

	fresh, ok := m.Get("+15551234567")
	require.True(t, ok)
	assert.Equal(t, "Jane", fresh.Name)
	assert.Empty(t, fresh.Messages)
}

func TestMemory_UpdateCreatesLazily(t *testing.T) {
	m := NewMemory(0)

	m.Update("+15551234567",
		func() *model.Conversation { return model.NewConversation("+15551234567", "", "") },
		func(conv *model.Conversation) {
			conv.Messages = append(conv.Messages, model.NewMessage(model.DirectionInbound, "hi"))
		},
	)

	got, ok := m.Get("+15551234567")
	require.True(t, ok)
	assert.Equal(t, model.DefaultName, got.Name)
	assert.Equal(t, model.DefaultContext, got.Context)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hi", got.Messages[0].Body)
}

func TestMemory_ConcurrentUpdatesDoNotLoseAppends(t *testing.T) {
	m := NewMemory(0)
	const writers = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Update("+15551234567",
				func() *model.Conversation { return model.NewConversation("+15551234567", "", "") },
				func(conv *model.Conversation) {
					conv.Messages = append(conv.Messages,
						model.NewMessage(model.DirectionInbound, fmt.Sprintf("msg %d", i)))
				},
			)
		}(i)
	}
	wg.Wait()

	got, ok := m.Get("+15551234567")
	require.True(t, ok)
	assert.Len(t, got.Messages, writers)
}

func TestMemory_TranscriptCapDropsOldest(t *testing.T) {
	m := NewMemory(3)

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf("msg %d", i)
		m.Update("+15551234567",
			func() *model.Conversation { return model.NewConversation("+15551234567", "", "") },
			func(conv *model.Conversation) {
				conv.Messages = append(conv.Messages, model.NewMessage(model.DirectionInbound, body))
			},
		)
	}

	got, ok := m.Get("+15551234567")
	require.True(t, ok)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "msg 2", got.Messages[0].Body)
	assert.Equal(t, "msg 4", got.Messages[2].Body)
}

func TestMemory_AllSnapshots(t *testing.T) {
	m := NewMemory(0)
	m.Put("+15551111111", model.NewConversation("+15551111111", "A", ""))
	m.Put("+15552222222", model.NewConversation("+15552222222", "B", ""))

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "A", all["+15551111111"].Name)
	assert.Equal(t, "B", all["+15552222222"].Name)
}
