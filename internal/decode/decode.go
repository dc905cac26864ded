// internal/decode/decode.go
package decode

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/listlift/listlift/internal/utils"
)

var logger = utils.NewComponentLogger("decode")

// stateMarker is the assignment prefix that precedes the embedded client
// state object on product pages. The JSON object that follows is terminated
// at the matching top-level brace.
const stateMarker = "window.__APOLLO_STATE__"

// ExtractState locates and decodes the embedded state blob from a page body.
// It returns (nil, false) both when the marker is absent and when the JSON
// after the marker is malformed; a malformed blob is logged but never raised
// to the caller. Decoding is attempted at most once per page.
func ExtractState(body string) (*Blob, bool) {
	idx := strings.Index(body, stateMarker)
	if idx < 0 {
		return nil, false
	}

	rest := body[idx+len(stateMarker):]
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return nil, false
	}
	rest = rest[eq+1:]

	raw, ok := matchObject(rest)
	if !ok {
		logger.Warn("state marker found but no JSON object follows")
		return nil, false
	}

	var entries map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warnf("failed to decode state blob: %v", err)
		return nil, false
	}

	return &Blob{entries: entries}, true
}

// matchObject returns the substring spanning the first JSON object in s,
// from its opening brace to the matching top-level close. The walk is
// string- and escape-aware so braces inside string values do not terminate
// the object early.
func matchObject(s string) (string, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '{' {
			start = i
			break
		}
		// Only whitespace may appear between the assignment and the object.
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return "", false
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseTree parses a page body into a navigable document tree for selector
// based extraction. Used as the fallback representation when no state blob
// is present.
func ParseTree(body string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}
