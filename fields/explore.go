package fields

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds how far [Explore] descends into nested values.
const DefaultMaxDepth = 5

// Field types reported in [Descriptor.Type]. Scalar arrays are reported as
// "array[<element type>]", e.g. "array[number]".
const (
	TypeNull    = "null"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Descriptor describes one discoverable leaf field of a document.
type Descriptor struct {
	// Path addresses the field and can be passed to [Resolve].
	Path string `json:"path"`

	// Type is the inferred kind of the field's value.
	Type string `json:"type"`

	// SampleValue is the string form of the value seen during exploration.
	SampleValue string `json:"sampleValue"`
}

// Explore lists the leaf fields of root, descending at most [DefaultMaxDepth]
// levels. It is shorthand for ExploreDepth(root, "", DefaultMaxDepth).
func Explore(root any) []Descriptor {
	return ExploreDepth(root, "", DefaultMaxDepth)
}

// ExploreDepth lists the leaf fields of root. Paths are prefixed with
// basePath and recursion stops once maxDepth levels have been consumed.
//
// Rules:
//   - Objects contribute one descriptor per leaf; intermediate objects are
//     not listed themselves.
//   - Arrays are sampled: only the first element is explored and its fields
//     keep the array's path, so "items": [{"x": 1}, {"x": 2}] yields a
//     single "items.x".
//   - Arrays of scalars yield one "array[<type>]" descriptor whose sample
//     is the first element. Empty arrays yield type "array" with sample "[]".
//   - null values yield type "null".
//
// Object keys are visited in sorted order so the output is deterministic.
// Use [ExploreJSON] to preserve the key order of the source document.
func ExploreDepth(root any, basePath string, maxDepth int) []Descriptor {
	return explore(nil, root, basePath, maxDepth)
}

func explore(out []Descriptor, node any, base string, depth int) []Descriptor {
	if depth <= 0 {
		return out
	}

	switch v := node.(type) {
	case []any:
		return exploreArray(out, v, base, depth)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			out = exploreValue(out, v[k], joinPath(base, k), depth)
		}
	}
	return out
}

func exploreValue(out []Descriptor, value any, path string, depth int) []Descriptor {
	switch v := value.(type) {
	case nil:
		return append(out, Descriptor{Path: path, Type: TypeNull, SampleValue: "null"})
	case map[string]any:
		return explore(out, v, path, depth-1)
	case []any:
		return exploreArray(out, v, path, depth)
	default:
		return append(out, Descriptor{Path: path, Type: kindOf(v), SampleValue: Stringify(v)})
	}
}

func exploreArray(out []Descriptor, arr []any, path string, depth int) []Descriptor {
	if len(arr) == 0 {
		return append(out, Descriptor{Path: path, Type: TypeArray, SampleValue: "[]"})
	}

	first := arr[0]
	switch first.(type) {
	case map[string]any, []any:
		return explore(out, first, path, depth-1)
	case nil:
		// null elements type as object
		return append(out, Descriptor{Path: path, Type: TypeArray + "[" + TypeObject + "]", SampleValue: "null"})
	default:
		return append(out, Descriptor{
			Path:        path,
			Type:        TypeArray + "[" + kindOf(first) + "]",
			SampleValue: Stringify(first),
		})
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// kindOf maps a decoded JSON scalar to its field type.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return TypeNull
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return TypeNumber
	default:
		return TypeObject
	}
}

// Stringify renders a decoded JSON value the way a browser's String()
// would: numbers without trailing zeros, arrays as comma-joined elements
// and objects as "[object Object]".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			if item != nil {
				parts[i] = Stringify(item)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return "[object Object]"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
