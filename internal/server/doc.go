// Package server provides the HTTP server for the FinBoard dashboard and API.
//
// The router is built on chi and serves:
//
//   - Dashboard: the embedded HTML at "/"
//   - REST API: widget states, discovered fields and rendered field
//     mappings under "/api/widgets"
//   - Discovery: "/api/discover" lists the fields of any JSON endpoint
//   - Server-Sent Events: real-time widget states at "/api/sse"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the finboard library should not need to interact with this
// package directly. The server is started by [finboard.Board.Start].
package server
