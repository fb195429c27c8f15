package fields

// Mapping binds a path inside a widget's data to a display label and an
// optional format.
type Mapping struct {
	DisplayName string     `json:"displayName"`
	FieldPath   string     `json:"fieldPath"`
	Format      FormatKind `json:"format,omitempty"`
}

// Value is a [Mapping] resolved against a document.
type Value struct {
	DisplayName string `json:"displayName"`
	FieldPath   string `json:"fieldPath"`

	// Raw is the resolved value, nil when the path did not resolve.
	Raw any `json:"raw"`

	// Display is Raw rendered with the mapping's format.
	Display string `json:"display"`
}

// Render resolves and formats every mapping against data, preserving the
// order of mappings. Unresolvable paths yield a nil Raw and [Placeholder].
func Render(data any, mappings []Mapping) []Value {
	values := make([]Value, len(mappings))
	for i, m := range mappings {
		raw := Resolve(data, m.FieldPath)
		values[i] = Value{
			DisplayName: m.DisplayName,
			FieldPath:   m.FieldPath,
			Raw:         raw,
			Display:     Format(raw, m.Format),
		}
	}
	return values
}

// RenderRows applies mappings to every element of an array, which is how a
// table widget renders a list of records. Non-array data is treated as a
// single row.
func RenderRows(data any, mappings []Mapping) [][]Value {
	rows, ok := data.([]any)
	if !ok {
		if data == nil {
			return nil
		}
		return [][]Value{Render(data, mappings)}
	}

	out := make([][]Value, len(rows))
	for i, row := range rows {
		out[i] = Render(row, mappings)
	}
	return out
}
