package comp

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Slot
		wantErr error
	}{
		{
			name: "RolesWithCommentsAndBlanks",
			raw:  "# Party one\n\nTank | 1h mace\nHealer\n\n# Party two\nDPS",
			want: []Slot{
				NewSlot("Tank", "1h mace"),
				NewSlot("Healer", ""),
				NewSlot("DPS", ""),
			},
		},
		{
			name: "WhitespaceAroundDelimiter",
			raw:  "  Tank|taunt build  ",
			want: []Slot{NewSlot("Tank", "taunt build")},
		},
		{
			name: "DelimiterOnlySplitOnce",
			raw:  "Tank | great arcane | swap",
			want: []Slot{NewSlot("Tank", "great arcane | swap")},
		},
		{
			name:    "OnlyCommentsAndBlanks",
			raw:     "# heading\n\n# another",
			wantErr: ErrNoSlots,
		},
		{
			name:    "Empty",
			raw:     "",
			wantErr: ErrNoSlots,
		},
		{
			name:    "TooManyRoles",
			raw:     strings.Repeat("Tank\n", MaxSlots+1),
			wantErr: ErrTooManySlots,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTemplate(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseTemplate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTemplate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTemplate_MaxSlotsAccepted(t *testing.T) {
	got, err := ParseTemplate(strings.Repeat("DPS\n", MaxSlots))
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	if len(got) != MaxSlots {
		t.Errorf("ParseTemplate() len = %d, want %d", len(got), MaxSlots)
	}
}

func TestRenderTemplate(t *testing.T) {
	raw := "# Zerg comp @comp\nTank | 1h mace\nHealer\n\nDPS"
	slots, err := ParseTemplate(raw)
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	if err := slots[0].Claim(Assignee{ID: "U1", DisplayName: "Alice"}); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	got := RenderTemplate(raw, slots, "<@&R1>")
	want := "# Zerg comp <@&R1>\n1. Tank <@U1> (1h mace)\n2. Healer\n\n3. DPS"
	if got != want {
		t.Errorf("RenderTemplate() = %q, want %q", got, want)
	}
}

// Numbering in the rendered body must always match the index a signup
// command uses, whatever mix of comment and blank lines surrounds the roles.
func TestRenderTemplate_NumberingMatchesSlotOrder(t *testing.T) {
	raw := "# top\nTank\n# middle\nHealer\n\n\nDPS\n# bottom"
	slots, err := ParseTemplate(raw)
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	if err := slots[1].Claim(Assignee{ID: "U9", DisplayName: "Bob"}); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	body := RenderTemplate(raw, slots, "")
	for _, line := range []string{"1. Tank", "2. Healer <@U9>", "3. DPS"} {
		if !strings.Contains(body, line) {
			t.Errorf("RenderTemplate() missing line %q in %q", line, body)
		}
	}
}
