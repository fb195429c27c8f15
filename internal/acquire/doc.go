// Package acquire decides where a widget's data comes from and fetches it.
//
// [Classify] turns a widget configuration into a [Source], a closed set of
// variants decided once at configuration time. [Router.Acquire] executes
// the variant against the shared cache, the custom endpoint fetcher and the
// market data provider. [BatchFetcher] throttles multi-symbol requests.
package acquire
