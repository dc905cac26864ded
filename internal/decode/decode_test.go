// internal/decode/decode_test.go
package decode

import (
	"testing"
)

func TestExtractState(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantFound bool
		wantLen   int
	}{
		{
			name:      "simple state object",
			body:      `<script>window.__APOLLO_STATE__ = {"Product:1":{"id":"1"}};</script>`,
			wantFound: true,
			wantLen:   1,
		},
		{
			name:      "braces inside string values",
			body:      `<script>window.__APOLLO_STATE__ = {"Product:1":{"description":"a {weird} \"quoted\" value } here"}};</script>`,
			wantFound: true,
			wantLen:   1,
		},
		{
			name:      "marker absent",
			body:      `<html><body>plain page</body></html>`,
			wantFound: false,
		},
		{
			name:      "malformed json after marker",
			body:      `<script>window.__APOLLO_STATE__ = {"Product:1":};</script>`,
			wantFound: false,
		},
		{
			name:      "marker without assignment",
			body:      `<script>window.__APOLLO_STATE__</script>`,
			wantFound: false,
		},
		{
			name:      "non-whitespace before object",
			body:      `<script>window.__APOLLO_STATE__ = JSON.parse("{}");</script>`,
			wantFound: false,
		},
		{
			name:      "unterminated object",
			body:      `<script>window.__APOLLO_STATE__ = {"Product:1":{"id":"1"</script>`,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, found := ExtractState(tt.body)
			if found != tt.wantFound {
				t.Fatalf("ExtractState() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				if blob != nil {
					t.Errorf("ExtractState() returned non-nil blob on miss")
				}
				return
			}
			if blob.Len() != tt.wantLen {
				t.Errorf("blob.Len() = %d, want %d", blob.Len(), tt.wantLen)
			}
		})
	}
}

func TestExtractStateNestedBraces(t *testing.T) {
	body := `window.__APOLLO_STATE__ = {"a":{"b":{"c":1}},"d":{"e":2}}; other();`
	blob, found := ExtractState(body)
	if !found {
		t.Fatal("expected state blob")
	}
	if blob.Len() != 2 {
		t.Errorf("blob.Len() = %d, want 2", blob.Len())
	}
	if _, ok := blob.Entry("a"); !ok {
		t.Error("entry a missing")
	}
}

func TestBlobResolve(t *testing.T) {
	blob := NewBlob(map[string]interface{}{
		"Author:7": map[string]interface{}{"name": "A. Writer"},
		"Product:1": map[string]interface{}{
			"bestOffer": map[string]interface{}{"__ref": "Offer:3"},
		},
	})

	tests := []struct {
		name   string
		node   interface{}
		wantOK bool
	}{
		{name: "string key", node: "Author:7", wantOK: true},
		{name: "ref node to missing key", node: map[string]interface{}{"__ref": "Offer:3"}, wantOK: false},
		{name: "map without ref", node: map[string]interface{}{"name": "x"}, wantOK: false},
		{name: "nil node", node: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := blob.Resolve(tt.node)
			if ok != tt.wantOK {
				t.Errorf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestBlobFindPrefixed(t *testing.T) {
	blob := NewBlob(map[string]interface{}{
		"ROOT_QUERY":  map[string]interface{}{},
		"Product:abc": map[string]interface{}{"id": "abc"},
	})

	key, ok := blob.FindPrefixed("Product:")
	if !ok || key != "Product:abc" {
		t.Errorf("FindPrefixed() = %q, %v; want Product:abc, true", key, ok)
	}
	if _, ok := blob.FindPrefixed("Offer:"); ok {
		t.Error("FindPrefixed() found a key for an absent prefix")
	}
}

func TestPathHelpers(t *testing.T) {
	node := map[string]interface{}{
		"baseInformation": map[string]interface{}{
			"name": "Tytuł",
			"rating": map[string]interface{}{
				"score": 4.5,
				"count": 12.0,
			},
			"smartAuthor": []interface{}{"Author:1"},
		},
	}

	if s, ok := GetString(node, "baseInformation", "name"); !ok || s != "Tytuł" {
		t.Errorf("GetString() = %q, %v", s, ok)
	}
	if _, ok := GetString(node, "baseInformation", "missing"); ok {
		t.Error("GetString() reported presence for missing key")
	}
	if f, ok := GetFloat(node, "baseInformation", "rating", "score"); !ok || f != 4.5 {
		t.Errorf("GetFloat() = %v, %v", f, ok)
	}
	if _, ok := GetFloat(node, "baseInformation", "name"); ok {
		t.Error("GetFloat() reported presence for a string value")
	}
	if s, ok := GetSlice(node, "baseInformation", "smartAuthor"); !ok || len(s) != 1 {
		t.Errorf("GetSlice() = %v, %v", s, ok)
	}
	if _, ok := GetMap(node, "baseInformation", "rating", "score"); ok {
		t.Error("GetMap() reported presence for a scalar")
	}
}

func TestNilBlobIsAbsent(t *testing.T) {
	var blob *Blob
	if blob.Len() != 0 {
		t.Error("nil blob Len() != 0")
	}
	if _, ok := blob.Entry("x"); ok {
		t.Error("nil blob Entry() reported presence")
	}
	if _, ok := blob.Resolve("x"); ok {
		t.Error("nil blob Resolve() reported presence")
	}
}
