// Package store keeps the latest state of every widget and publishes
// changes to subscribers.
//
// The main components are:
//
//   - [Store]: storage and subscription operations
//   - [MemoryStore]: in-memory implementation with non-blocking pub/sub
//   - [WidgetState]: the JSON shape of a widget's state
//
// Users of the finboard library should not need to interact with this
// package directly.
package store
