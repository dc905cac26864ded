// internal/normalize/skills_test.go
package normalize

import (
	"reflect"
	"testing"
)

func TestSkills(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "polish sentence",
			text: "Wymagany Python oraz Go i Docker",
			want: []string{"python", "go", "docker"},
		},
		{
			name: "case insensitive",
			text: "JAVA, TypeScript, AWS",
			want: []string{"java", "typescript", "aws"},
		},
		{
			name: "symbol tokens survive",
			text: "Znajomość C++ lub C# mile widziana",
			want: []string{"c++", "c#"},
		},
		{
			name: "whole token only",
			text: "golang i javascriptowe frameworki",
			want: nil,
		},
		{
			name: "duplicates collapse in first-seen order",
			text: "Docker, potem Python, potem znowu Docker",
			want: []string{"docker", "python"},
		},
		{
			name: "no known skills",
			text: "praca fizyczna przy rozładunku",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Skills(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Skills(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
