package store

import (
	"time"

	"github.com/jpalmerr/finboard/fields"
)

// WidgetState is the stored state of one widget, shaped for JSON (REST API
// and SSE). It is decoupled from the poller's internal types.
type WidgetState struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Type is the widget type: card, table or chart.
	Type string `json:"type"`

	// Source describes where the data comes from, e.g. "quote AAPL".
	Source string `json:"source"`

	// Kind is the acquisition kind, e.g. "single_quote".
	Kind string `json:"kind"`

	// Status is idle, loading, success or failed.
	Status  string `json:"status"`
	Loading bool   `json:"loading"`

	// Data is the last acquired document; null when there is none.
	Data any `json:"data"`

	// Error is the failure message of the last cycle, nil otherwise.
	Error *string `json:"error"`

	Mappings []fields.Mapping `json:"fieldMappings,omitempty"`

	RefreshIntervalSec int64 `json:"refreshInterval"`

	LatencyMs int64     `json:"latency_ms"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store holds widget states and publishes changes.
//
// Implementations must be safe for concurrent access. Subscribers are used
// to push updates to connected clients via Server-Sent Events.
type Store interface {
	// Update stores a state keyed by ID and notifies all subscribers.
	Update(state WidgetState)

	// Get returns the state of one widget.
	Get(id string) (WidgetState, bool)

	// GetAll returns a snapshot of all states ordered by ID.
	GetAll() []WidgetState

	// Delete removes a widget.
	Delete(id string)

	// Subscribe returns a buffered channel of updates; slow consumers may
	// miss updates. Callers must Unsubscribe when done.
	Subscribe() <-chan WidgetState

	// Unsubscribe removes a subscription and closes its channel. Safe to
	// call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan WidgetState)
}
