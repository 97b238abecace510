package guides

import (
	"strings"
	"testing"
)

func TestInsertSnippets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want func(t *testing.T, got string)
	}{
		{
			name: "KnownKeyExpanded",
			in:   "intro\n{{guard_rune}}\noutro",
			want: func(t *testing.T, got string) {
				if !strings.Contains(got, "forced movement effects") {
					t.Errorf("snippet body missing in %q", got)
				}
				if strings.Contains(got, "{{") {
					t.Errorf("placeholder left in %q", got)
				}
			},
		},
		{
			name: "UnknownKeyExpandsToNothing",
			in:   "before {{no_such_snippet}} after",
			want: func(t *testing.T, got string) {
				if got != "before  after" {
					t.Errorf("got %q", got)
				}
			},
		},
		{
			name: "NoPlaceholderUntouched",
			in:   "plain guide text",
			want: func(t *testing.T, got string) {
				if got != "plain guide text" {
					t.Errorf("got %q", got)
				}
			},
		},
		{
			name: "MultiplePlaceholders",
			in:   "{{sacred_ground}}\n{{motivating_cleanse}}",
			want: func(t *testing.T, got string) {
				if !strings.Contains(got, "silences anyone") || !strings.Contains(got, "Cleanses all crowd control") {
					t.Errorf("not all snippets expanded in %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, InsertSnippets(tt.in))
		})
	}
}
