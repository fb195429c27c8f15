// Package provider talks to the reference market data provider (Alpha
// Vantage): single quotes under "Global Quote" and daily, weekly or monthly
// time series under a key containing "Time Series".
//
// [Catalog] records the published quotas of the providers finboard knows,
// from which the default batch delay is derived.
package provider
