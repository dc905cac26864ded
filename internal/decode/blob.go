// internal/decode/blob.go
package decode

import "strings"

// Blob is a decoded embedded state object: a flat mapping from opaque string
// keys to nested JSON nodes. Some node values are reference nodes carrying a
// "__ref" key whose value names another top-level entry; references are
// resolved by re-indexing into the same blob, and a missing referenced key
// resolves to absent rather than an error.
type Blob struct {
	entries map[string]interface{}
}

// refKey marks a reference node inside the blob.
const refKey = "__ref"

// NewBlob builds a blob from already decoded entries. Used by tests and by
// callers replaying archived state.
func NewBlob(entries map[string]interface{}) *Blob {
	return &Blob{entries: entries}
}

// Len returns the number of top-level entries
func (b *Blob) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Entry returns the top-level entry for key as a map node
func (b *Blob) Entry(key string) (map[string]interface{}, bool) {
	if b == nil {
		return nil, false
	}
	node, ok := b.entries[key].(map[string]interface{})
	return node, ok
}

// FindPrefixed returns the first top-level key with the given prefix.
// Product pages carry exactly one "Product:" entry; iteration order is not
// significant for single-match prefixes.
func (b *Blob) FindPrefixed(prefix string) (string, bool) {
	if b == nil {
		return "", false
	}
	for key := range b.entries {
		if strings.HasPrefix(key, prefix) {
			return key, true
		}
	}
	return "", false
}

// Resolve follows a reference node to its target entry. The node may be a
// map carrying "__ref", or the reference key string itself. A node that is
// not a reference, or a reference to a missing key, yields (nil, false).
func (b *Blob) Resolve(node interface{}) (map[string]interface{}, bool) {
	if b == nil {
		return nil, false
	}
	switch v := node.(type) {
	case string:
		return b.Entry(v)
	case map[string]interface{}:
		ref, ok := v[refKey].(string)
		if !ok {
			return nil, false
		}
		return b.Entry(ref)
	default:
		return nil, false
	}
}

// Node lookup helpers. All of them treat missing keys and type mismatches
// as absence so that field probes never fail on irregular markup state.

// GetMap walks nested map keys and returns the map at the end of the path
func GetMap(node map[string]interface{}, path ...string) (map[string]interface{}, bool) {
	current := node
	for _, key := range path {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// GetString walks nested map keys and returns the string at the end of the path
func GetString(node map[string]interface{}, path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	parent := node
	if len(path) > 1 {
		var ok bool
		parent, ok = GetMap(node, path[:len(path)-1]...)
		if !ok {
			return "", false
		}
	}
	s, ok := parent[path[len(path)-1]].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// GetFloat walks nested map keys and returns the number at the end of the path
func GetFloat(node map[string]interface{}, path ...string) (float64, bool) {
	if len(path) == 0 {
		return 0, false
	}
	parent := node
	if len(path) > 1 {
		var ok bool
		parent, ok = GetMap(node, path[:len(path)-1]...)
		if !ok {
			return 0, false
		}
	}
	f, ok := parent[path[len(path)-1]].(float64)
	return f, ok
}

// GetSlice walks nested map keys and returns the array at the end of the path
func GetSlice(node map[string]interface{}, path ...string) ([]interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	parent := node
	if len(path) > 1 {
		var ok bool
		parent, ok = GetMap(node, path[:len(path)-1]...)
		if !ok {
			return nil, false
		}
	}
	s, ok := parent[path[len(path)-1]].([]interface{})
	return s, ok
}
