package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jpalmerr/finboard/internal/acquire"
)

// ErrUnknownWidget is returned for operations on a widget id the manager
// does not own.
var ErrUnknownWidget = errors.New("unknown widget")

// ErrStopped is returned when widgets are added after Stop.
var ErrStopped = errors.New("manager stopped")

// Widget is the polling configuration of one widget.
type Widget struct {
	ID     string
	Source acquire.Source

	// Interval between cycles. Zero fetches once when bound.
	Interval time.Duration
}

// Manager owns one [Poller] per widget and fans their transitions into a
// single results channel.
//
// Pollers are independent: each has its own timer and there is no shared
// request queue, so a slow widget never delays another.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Manager struct {
	acquirer Acquirer
	logger   *slog.Logger
	initial  []Widget

	results   chan Result
	sendMu    sync.RWMutex // guards results against send after close
	closed    bool
	closeOnce sync.Once

	mu      sync.Mutex
	pollers map[string]*Poller
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
}

// NewManager creates a manager for widgets. Polling begins with
// [Manager.Start].
func NewManager(widgets []Widget, acquirer Acquirer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		acquirer: acquirer,
		logger:   logger,
		initial:  widgets,
		results:  make(chan Result, 2*len(widgets)+1),
		pollers:  make(map[string]*Poller, len(widgets)),
	}
}

// Results returns the channel of state transitions. It is closed by
// [Manager.Stop]; consumers should read until it is closed.
func (m *Manager) Results() <-chan Result {
	return m.results
}

// Start binds every widget. Start is non-blocking and idempotent. If Stop
// was called first, Start is a no-op. A nil ctx means context.Background().
func (m *Manager) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started || m.stopped {
		return
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	for _, w := range m.initial {
		m.addLocked(w)
	}
}

// Stop unbinds every widget, waits for in-flight cycles and closes the
// results channel. Stop is idempotent and safe to call before Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopped = true
	if m.cancel != nil {
		m.cancel()
	}
	pollers := make([]*Poller, 0, len(m.pollers))
	for _, p := range m.pollers {
		pollers = append(pollers, p)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range pollers {
		wg.Add(1)
		go func(p *Poller) {
			defer wg.Done()
			p.Unbind()
		}(p)
	}
	wg.Wait()

	m.closeOnce.Do(func() {
		m.sendMu.Lock()
		m.closed = true
		close(m.results)
		m.sendMu.Unlock()
	})
}

// Add starts polling a new widget. Adding an existing id rebinds it.
func (m *Manager) Add(w Widget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}
	if !m.started {
		m.initial = append(m.initial, w)
		return nil
	}
	m.addLocked(w)
	return nil
}

func (m *Manager) addLocked(w Widget) {
	p, ok := m.pollers[w.ID]
	if !ok {
		p = NewPoller(w.ID, m.acquirer, m.send, m.logger)
		m.pollers[w.ID] = p
	}
	p.Bind(m.ctx, w.Source, w.Interval)
}

// Remove unbinds and forgets a widget.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	p, ok := m.pollers[id]
	delete(m.pollers, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("remove %q: %w", id, ErrUnknownWidget)
	}
	p.Unbind()
	return nil
}

// Rebind replaces a widget's source and interval. The previous timer is
// stopped before the new binding fetches.
func (m *Manager) Rebind(id string, src acquire.Source, interval time.Duration) error {
	m.mu.Lock()
	p, ok := m.pollers[id]
	ctx := m.ctx
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("rebind %q: %w", id, ErrUnknownWidget)
	}
	p.Bind(ctx, src, interval)
	return nil
}

// Refetch runs an extra cycle for a widget without disturbing its timer.
func (m *Manager) Refetch(id string) error {
	m.mu.Lock()
	p, ok := m.pollers[id]
	m.mu.Unlock()

	if !ok || !p.Refetch() {
		return fmt.Errorf("refetch %q: %w", id, ErrUnknownWidget)
	}
	return nil
}

// State returns the current state of a widget.
func (m *Manager) State(id string) (State, bool) {
	m.mu.Lock()
	p, ok := m.pollers[id]
	m.mu.Unlock()

	if !ok {
		return State{}, false
	}
	return p.State(), true
}

// IDs returns the ids of all bound widgets, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.pollers))
	for id := range m.pollers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// send delivers a transition, giving up once the manager is stopping.
func (m *Manager) send(r Result) {
	m.sendMu.RLock()
	defer m.sendMu.RUnlock()

	if m.closed {
		return
	}
	select {
	case m.results <- r:
	case <-m.ctx.Done():
	}
}
