package fields

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Resolve returns the value found at path inside root, or nil when any
// segment of the path does not exist.
//
// The path is split on "." and walked left to right. Object keys that
// themselves contain dots are matched by rejoining segments, so
// "Global Quote.05. price" reaches {"Global Quote": {"05. price": ...}}.
// A segment may carry
// one or more bracketed indices, e.g. "results[0]" or "grid[1][2]", which
// descend into arrays after the key lookup. A purely numeric segment also
// indexes an array, so "results.0.price" and "results[0].price" are
// equivalent. A segment with an empty key ("[0]") indexes the current value
// directly, which allows addressing rows of a top-level array.
//
// Paths beginning with "$" are evaluated as JSONPath expressions. A JSONPath
// matching a single value returns that value; multiple matches are returned
// as a []any.
//
// Example:
//
//	// For {"data": {"results": [{"price": 12.5}]}}
//	fields.Resolve(doc, "data.results[0].price") // 12.5
//	fields.Resolve(doc, "data.missing.price")    // nil
func Resolve(root any, path string) any {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "$") {
		return resolveJSONPath(root, path)
	}

	return walk(root, strings.Split(path, "."))
}

// ResolveFirst returns the first non-nil value among paths.
func ResolveFirst(root any, paths ...string) any {
	for _, p := range paths {
		if v := Resolve(root, p); v != nil {
			return v
		}
	}
	return nil
}

// walk descends segments from node. When a segment does not resolve it is
// joined with the following ones, so keys that contain dots such as
// "05. price" stay addressable.
func walk(node any, segments []string) any {
	if len(segments) == 0 {
		return node
	}
	for i := 1; i <= len(segments); i++ {
		next := step(node, strings.Join(segments[:i], "."))
		if next == nil {
			continue
		}
		if v := walk(next, segments[i:]); v != nil {
			return v
		}
	}
	return nil
}

// step descends one path segment.
func step(node any, segment string) any {
	key, indices, ok := splitSegment(segment)
	if !ok {
		return nil
	}

	if key != "" || len(indices) == 0 {
		node = child(node, key)
		if node == nil {
			return nil
		}
	}

	for _, idx := range indices {
		node = element(node, idx)
		if node == nil {
			return nil
		}
	}
	return node
}

// splitSegment separates "key[1][2]" into its key and indices.
// ok is false when the brackets are malformed or hold a non-integer.
func splitSegment(segment string) (key string, indices []int, ok bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return segment, nil, true
	}

	key = segment[:open]
	rest := segment[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
		if err != nil {
			return "", nil, false
		}
		indices = append(indices, idx)
		rest = rest[end+1:]
	}
	return key, indices, true
}

// child looks up key in an object, or a numeric key in an array.
func child(node any, key string) any {
	switch n := node.(type) {
	case map[string]any:
		return n[key]
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil
		}
		return element(n, idx)
	default:
		return nil
	}
}

// element returns arr[idx] when node is an array and idx is in range.
func element(node any, idx int) any {
	arr, ok := node.([]any)
	if !ok || idx < 0 || idx >= len(arr) {
		return nil
	}
	return arr[idx]
}

func resolveJSONPath(root any, path string) any {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil
	}

	results := expr.Get(root)
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		return results
	}
}
