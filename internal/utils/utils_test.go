// internal/utils/utils_test.go
package utils

import "testing"

func TestFoldDiacritics(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Branża", "branza"},
		{"Doświadczenie", "doswiadczenie"},
		{"pełny etat", "pelny etat"},
		{"ŁÓDŹ", "lodz"},
		{"kwotę", "kwote"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FoldDiacritics(tt.input); got != tt.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeSpaces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  ala   ma \t kota \n", "ala ma kota"},
		{"single", "single"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSpaces(tt.input); got != tt.want {
			t.Errorf("NormalizeSpaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		href string
		want string
	}{
		{"https://books.example.com/kategoria/1", "/ksiazka/x,p1.html", "https://books.example.com/ksiazka/x,p1.html"},
		{"https://books.example.com/kategoria/1", "https://other.example.com/y", "https://other.example.com/y"},
		{"https://books.example.com/a/b", "c", "https://books.example.com/a/c"},
		{"https://books.example.com", "", ""},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.href); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://books.example.com/p/1", true},
		{"http://localhost:8080", true},
		{"/relative/path", false},
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidURL(tt.input); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://Books.Example.COM:443/p/1/", "https://books.example.com/p/1"},
		{"http://example.com:80/", "http://example.com/"},
		{"https://example.com/p?b=2&a=1#frag", "https://example.com/p?a=1&b=2"},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.input)
		if err != nil {
			t.Errorf("NormalizeURL(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString = %q", got)
	}
	if got := TruncateString("a longer string", 9); got != "a long..." {
		t.Errorf("TruncateString = %q", got)
	}
	if got := TruncateString("abcdef", 2); got != "ab" {
		t.Errorf("TruncateString = %q", got)
	}
}
