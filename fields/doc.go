// Package fields discovers, addresses and renders values inside arbitrary
// JSON documents.
//
// FinBoard widgets bind to APIs whose response shape is not known ahead of
// time. This package provides the three pieces needed to work with such
// responses:
//
//   - [Explore] and [ExploreJSON]: walk an unknown document and list the leaf
//     fields it contains, each with an inferred type and a sample value
//   - [Resolve]: read a value back out of a document using a dotted path
//     such as "data.results[0].price"
//   - [Format]: render a resolved value as currency, percentage, number or date
//
// All functions are pure and safe for concurrent use. Missing data is never
// an error: unresolvable paths return nil and nil values format as
// [Placeholder].
//
// Documents are the values produced by encoding/json when decoding into
// an interface: map[string]any, []any, string, float64, bool and nil.
package fields
