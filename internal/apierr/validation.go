package apierr

import (
	"sort"
)

// FormatValidationErrors flattens a server "errors" object into
// "field: message" lines. A field value may be a string, a list of strings,
// or an object with a "message" string; other shapes are skipped. Fields are
// emitted in name order, list entries in their original order. Nil or
// non-object input yields an empty slice.
func FormatValidationErrors(v any) []string {
	fields := asFieldMap(v)
	out := []string{}
	if len(fields) == 0 {
		return out
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, msg := range messagesOf(fields[name]) {
			out = append(out, name+": "+msg)
		}
	}
	return out
}

func asFieldMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	case map[string][]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	default:
		return nil
	}
}

func messagesOf(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		if s, ok := t["message"].(string); ok {
			return []string{s}
		}
	case map[string]string:
		if s, ok := t["message"]; ok {
			return []string{s}
		}
	}
	return nil
}
