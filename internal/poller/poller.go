package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/finboard/internal/acquire"
)

// Status is the lifecycle state of a widget's data.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Acquirer fetches the data for a source.
type Acquirer interface {
	Acquire(ctx context.Context, src acquire.Source) (any, error)
}

// State is a snapshot of one widget's data.
type State struct {
	Status Status

	// Data is the last acquired value. It is kept while a refetch is
	// loading and cleared when a cycle fails.
	Data any

	// Err is set only in StatusFailed.
	Err error

	// Latency is the duration of the last settled cycle.
	Latency time.Duration

	UpdatedAt time.Time
}

// Loading reports whether a cycle is in flight.
func (s State) Loading() bool {
	return s.Status == StatusLoading
}

// Result is emitted on every state transition of a widget.
type Result struct {
	WidgetID string
	Source   acquire.Source
	State
}

// Poller keeps one widget's data fresh: an immediate cycle when bound, then
// one cycle per interval until unbound. Each cycle moves the state through
// loading to success or failed.
//
// At most one timer is live per poller. Rebinding stops the previous loop
// and waits for it before starting the next; results of cycles started
// under a previous binding are discarded.
//
// All methods are safe for concurrent use.
type Poller struct {
	id       string
	acquirer Acquirer
	emit     func(Result)
	logger   *slog.Logger

	bindMu sync.Mutex // serializes Bind and Unbind

	mu         sync.Mutex
	generation uint64
	source     acquire.Source
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	inflight   sync.WaitGroup
	state      State
}

// NewPoller creates an idle poller for widget id. emit receives every
// state transition in order; it must not call back into the poller.
func NewPoller(id string, acquirer Acquirer, emit func(Result), logger *slog.Logger) *Poller {
	if emit == nil {
		emit = func(Result) {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		id:       id,
		acquirer: acquirer,
		emit:     emit,
		logger:   logger,
		state:    State{Status: StatusIdle},
	}
}

// ID returns the widget id.
func (p *Poller) ID() string {
	return p.id
}

// Bind starts polling src: one cycle immediately, then one per interval.
// A non-positive interval fetches once. Any previous binding is stopped
// first. The loop ends when ctx is cancelled or the poller is unbound.
func (p *Poller) Bind(ctx context.Context, src acquire.Source, interval time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	if src == nil {
		src = acquire.Unconfigured{}
	}

	p.bindMu.Lock()
	defer p.bindMu.Unlock()

	p.stop()

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.source = src
	p.state = State{Status: StatusIdle}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	loopCtx, done := p.ctx, p.done
	p.mu.Unlock()

	go p.loop(loopCtx, gen, src, interval, done)
}

// Unbind stops polling and waits for the loop and any manual refetch to
// finish. The state returns to idle. Unbind on an unbound poller is a
// no-op.
func (p *Poller) Unbind() {
	p.bindMu.Lock()
	defer p.bindMu.Unlock()

	p.stop()

	p.mu.Lock()
	p.source = nil
	p.state = State{Status: StatusIdle}
	p.mu.Unlock()
}

// stop cancels the current binding and waits for its goroutines. Callers
// hold bindMu.
func (p *Poller) stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.generation++ // discard anything still settling
	p.cancel()
	done := p.done
	p.cancel, p.done, p.ctx = nil, nil, nil
	p.mu.Unlock()

	<-done
	p.inflight.Wait()
}

// Refetch runs one cycle for the current binding in the background without
// touching the timer. It returns false when the poller is not bound.
func (p *Poller) Refetch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return false
	}
	p.spawn(p.ctx, p.generation, p.source)
	return true
}

// State returns the current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Source returns the bound source, or nil when unbound.
func (p *Poller) Source() acquire.Source {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

func (p *Poller) loop(ctx context.Context, gen uint64, src acquire.Source, interval time.Duration, done chan struct{}) {
	defer close(done)

	if interval <= 0 {
		p.cycle(ctx, gen, src)
		return
	}

	// the period runs from bind, not from when a cycle settles; cycles
	// may overlap and the last one to settle wins
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.spawn(ctx, gen, src)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(ctx, gen, src)
		}
	}
}

// spawn runs one cycle in the background. stop waits for it.
func (p *Poller) spawn(ctx context.Context, gen uint64, src acquire.Source) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.cycle(ctx, gen, src)
	}()
}

// cycle performs one acquisition and records its outcome.
func (p *Poller) cycle(ctx context.Context, gen uint64, src acquire.Source) {
	if !p.update(gen, func(s *State) {
		s.Status = StatusLoading
		s.Err = nil
	}) {
		return
	}

	start := time.Now()
	data, err := p.safeAcquire(ctx, src)
	latency := time.Since(start)

	if ctx.Err() != nil {
		// unbound or rebound while in flight
		return
	}

	if err != nil {
		p.logger.Warn("widget acquisition failed",
			"widget", p.id,
			"source", src.String(),
			"latency_ms", latency.Milliseconds(),
			"error", err,
		)
	} else {
		p.logger.Debug("widget acquired",
			"widget", p.id,
			"source", src.String(),
			"latency_ms", latency.Milliseconds(),
			"has_data", data != nil,
		)
	}

	p.update(gen, func(s *State) {
		s.Latency = latency
		if err != nil {
			s.Status = StatusFailed
			s.Data = nil
			s.Err = err
			return
		}
		s.Status = StatusSuccess
		s.Data = data
		s.Err = nil
	})
}

// update applies fn to the state and emits the result, unless gen is no
// longer current. It reports whether the update was applied.
func (p *Poller) update(gen uint64, fn func(*State)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		return false
	}
	fn(&p.state)
	p.state.UpdatedAt = time.Now()
	p.emit(Result{WidgetID: p.id, Source: p.source, State: p.state})
	return true
}

// safeAcquire calls the acquirer with panic recovery. A panic is logged
// with a correlation id and reported as a failed cycle.
func (p *Poller) safeAcquire(ctx context.Context, src acquire.Source) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			p.logger.Error("acquisition panic",
				"widget", p.id,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			data = nil
			err = fmt.Errorf("acquisition panic (correlation_id: %s)", correlationID)
		}
	}()
	return p.acquirer.Acquire(ctx, src)
}
