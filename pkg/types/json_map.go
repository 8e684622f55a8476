package types

// JSONMap stores free-form key/value annotations (order notes, gateway
// metadata) as a jsonb column.
type JSONMap map[string]string

// Merge overlays other onto the map, returning the result. Existing keys are
// overwritten, never removed.
func (m JSONMap) Merge(other JSONMap) JSONMap {
	if len(other) == 0 {
		return m
	}
	out := JSONMap{}
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// StringList stores an ordered list of strings as a jsonb column.
type StringList []string
