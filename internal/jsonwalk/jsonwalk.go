// Package jsonwalk provides nil-safe lookups into decoded JSON trees
// (map[string]any / []any as produced by encoding/json). Every accessor
// returns its zero value when any step of the key path is absent or has
// the wrong type, so callers can chain deep paths without guarding each
// hop.
package jsonwalk

// Value walks the key path and returns the raw node, reporting whether
// every hop existed.
func Value(node any, keys ...string) (any, bool) {
	cur := node
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Map returns the object at the key path, or nil.
func Map(node any, keys ...string) map[string]any {
	v, ok := Value(node, keys...)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// Slice returns the array at the key path, or nil.
func Slice(node any, keys ...string) []any {
	v, ok := Value(node, keys...)
	if !ok {
		return nil
	}
	s, _ := v.([]any)
	return s
}

// String returns the string at the key path, or "".
func String(node any, keys ...string) string {
	v, ok := Value(node, keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Number returns the number at the key path, or 0. JSON numbers decode
// as float64.
func Number(node any, keys ...string) float64 {
	v, ok := Value(node, keys...)
	if !ok {
		return 0
	}
	f, _ := v.(float64)
	return f
}

// Bool returns the boolean at the key path, or false.
func Bool(node any, keys ...string) bool {
	v, ok := Value(node, keys...)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
