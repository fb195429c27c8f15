// Package cache holds acquired widget data for a fixed freshness window so
// that widgets bound to the same request share one upstream call.
//
// [Memory] is the default, process-local implementation. [Redis] shares
// entries between processes when a redis_url is configured.
package cache
