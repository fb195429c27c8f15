// Package fetch is the HTTP layer shared by every data source in finboard.
//
// [Client] wraps a pooled http.Client with per-request timeouts and body
// size limits. [Client.FetchJSON] is the generic acquisition primitive used
// for custom endpoints and by the market data provider.
package fetch
