// Package poller keeps widget data fresh for finboard.
//
// This package is internal to finboard and runs the per-widget polling
// lifecycle: an immediate fetch when a widget is bound, a fixed-period
// refetch while it stays bound, and teardown that discards late results.
//
// The main components are:
//
//   - [Poller]: the lifecycle of a single widget (idle, loading, success, failed)
//   - [Manager]: owns one poller per widget and fans their transitions into one channel
//   - [Result]: a state transition of one widget
//
// Users of the finboard library should not need to interact with this
// package directly. Configuration is done through the main finboard package.
package poller
