package store

import (
	"sort"
	"sync"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory [Store].
//
// Subscribers receive updates via buffered channels. Sends are non-blocking;
// if a subscriber's buffer is full the update is dropped for that
// subscriber.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]WidgetState

	subMu       sync.RWMutex
	subscribers map[chan WidgetState]struct{}
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:      make(map[string]WidgetState),
		subscribers: make(map[chan WidgetState]struct{}),
	}
}

// Update stores state under its ID and notifies subscribers.
func (m *MemoryStore) Update(state WidgetState) {
	m.mu.Lock()
	m.states[state.ID] = state
	m.mu.Unlock()

	m.notifySubscribers(state)
}

// Get returns the state stored for id.
func (m *MemoryStore) Get(id string) (WidgetState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.states[id]
	return s, ok
}

// GetAll returns a copy of all states ordered by ID.
func (m *MemoryStore) GetAll() []WidgetState {
	m.mu.RLock()
	states := make([]WidgetState, 0, len(m.states))
	for _, s := range m.states {
		states = append(states, s)
	}
	m.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

// Delete removes the state stored for id. Subscribers are not notified.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
}

// Subscribe creates a subscription with a buffer of 100 updates.
func (m *MemoryStore) Subscribe() <-chan WidgetState {
	ch := make(chan WidgetState, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *MemoryStore) Unsubscribe(ch <-chan WidgetState) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(state WidgetState) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- state:
		default:
			// slow subscriber, drop
		}
	}
}
