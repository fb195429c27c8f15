package fields

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// ExploreJSON is like [Explore] but works on raw JSON bytes, visiting object
// keys in the order they appear in the document. This is what a field picker
// wants to show: fields listed the way the API returned them.
//
// Returns an error only if data is not valid JSON.
func ExploreJSON(data []byte) ([]Descriptor, error) {
	return ExploreJSONDepth(data, "", DefaultMaxDepth)
}

// ExploreJSONDepth is the raw-bytes counterpart of [ExploreDepth].
func ExploreJSONDepth(data []byte, basePath string, maxDepth int) ([]Descriptor, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return exploreRaw(nil, value, dataType, basePath, maxDepth)
}

func exploreRaw(out []Descriptor, value []byte, dataType jsonparser.ValueType, base string, depth int) ([]Descriptor, error) {
	if depth <= 0 {
		return out, nil
	}

	switch dataType {
	case jsonparser.Array:
		return exploreRawArray(out, value, base, depth)
	case jsonparser.Object:
		err := jsonparser.ObjectEach(value, func(key, v []byte, vt jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(key)
			if err != nil {
				return fmt.Errorf("parse key %q: %w", key, err)
			}
			out, err = exploreRawValue(out, v, vt, joinPath(base, name), depth)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("parse object at %q: %w", base, err)
		}
	}
	return out, nil
}

func exploreRawValue(out []Descriptor, value []byte, dataType jsonparser.ValueType, path string, depth int) ([]Descriptor, error) {
	switch dataType {
	case jsonparser.Null:
		return append(out, Descriptor{Path: path, Type: TypeNull, SampleValue: "null"}), nil
	case jsonparser.Object:
		return exploreRaw(out, value, dataType, path, depth-1)
	case jsonparser.Array:
		return exploreRawArray(out, value, path, depth)
	default:
		kind, sample, err := rawScalar(value, dataType)
		if err != nil {
			return nil, err
		}
		return append(out, Descriptor{Path: path, Type: kind, SampleValue: sample}), nil
	}
}

func exploreRawArray(out []Descriptor, arr []byte, path string, depth int) ([]Descriptor, error) {
	first, dataType, _, err := jsonparser.Get(arr, "[0]")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return append(out, Descriptor{Path: path, Type: TypeArray, SampleValue: "[]"}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse array at %q: %w", path, err)
	}

	switch dataType {
	case jsonparser.Object, jsonparser.Array:
		return exploreRaw(out, first, dataType, path, depth-1)
	case jsonparser.Null:
		return append(out, Descriptor{Path: path, Type: TypeArray + "[" + TypeObject + "]", SampleValue: "null"}), nil
	default:
		kind, sample, err := rawScalar(first, dataType)
		if err != nil {
			return nil, err
		}
		return append(out, Descriptor{Path: path, Type: TypeArray + "[" + kind + "]", SampleValue: sample}), nil
	}
}

// rawScalar returns the field type and sample string of a raw JSON scalar.
// Numbers are re-rendered so "1.50" samples as "1.5", matching [Explore].
func rawScalar(value []byte, dataType jsonparser.ValueType) (string, string, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return "", "", fmt.Errorf("parse string: %w", err)
		}
		return TypeString, s, nil
	case jsonparser.Number:
		f, err := strconv.ParseFloat(string(value), 64)
		if err != nil {
			return TypeNumber, string(value), nil
		}
		return TypeNumber, formatNumber(f), nil
	case jsonparser.Boolean:
		return TypeBoolean, string(value), nil
	default:
		return TypeObject, string(value), nil
	}
}
