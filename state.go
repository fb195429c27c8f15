package finboard

import "time"

// Status is the lifecycle state of a widget's data.
type Status string

const (
	// StatusIdle means no fetch has run since the widget was bound.
	StatusIdle Status = "idle"

	// StatusLoading means a fetch is in flight. Data from the previous
	// fetch, if any, is kept meanwhile.
	StatusLoading Status = "loading"

	// StatusSuccess means the last fetch completed. Data may still be nil:
	// provider soft errors, unexpected shapes and unconfigured widgets all
	// succeed with no data.
	StatusSuccess Status = "success"

	// StatusFailed means the last fetch hit a transport or HTTP error.
	StatusFailed Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// WidgetState is the outcome of one fetch cycle of a widget, delivered to
// callbacks registered with [WithStateCallback].
type WidgetState struct {
	WidgetID string

	// Kind and Source describe where the data came from.
	Kind   SourceKind
	Source string

	// Status is StatusSuccess or StatusFailed.
	Status Status

	// Data is the acquired document: a JSON value for custom endpoints and
	// time series, a quote object for single quotes, and a list of
	// normalized quotes for watchlists and top movers.
	Data any

	// Error is set when Status is StatusFailed.
	Error error

	// Latency is the time the fetch took, including cache lookups and
	// batch delays.
	Latency time.Duration

	UpdatedAt time.Time
}
