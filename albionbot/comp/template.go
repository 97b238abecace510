package comp

import (
	"fmt"
	"strings"
)

const (
	// MaxSlots bounds the slot list so numbering and rendering stay sane.
	MaxSlots = 60

	// CommentMarker starts a free-text line that produces no slot.
	CommentMarker = "#"

	// CommentDelimiter separates a role label from its inline comment.
	CommentDelimiter = "|"

	// MentionPlaceholder in comment lines is replaced with the configured
	// role-group mention at render time.
	MentionPlaceholder = "@comp"
)

var (
	ErrNoSlots      = fmt.Errorf("template contains no role lines")
	ErrTooManySlots = fmt.Errorf("template exceeds %d role lines", MaxSlots)
)

// ParseTemplate turns organizer-authored text into an ordered slot list.
// Blank lines and lines starting with the comment marker produce no slot;
// every other line becomes one slot, in file order. A role line may carry an
// inline comment after the delimiter, which is display-only and excluded
// from slot identity.
func ParseTemplate(raw string) ([]Slot, error) {
	var slots []Slot
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, CommentMarker) {
			continue
		}
		label, comment := splitRoleLine(line)
		slots = append(slots, NewSlot(label, comment))
	}
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}
	if len(slots) > MaxSlots {
		return nil, ErrTooManySlots
	}
	return slots, nil
}

func splitRoleLine(line string) (label, comment string) {
	if idx := strings.Index(line, CommentDelimiter); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(CommentDelimiter):])
	}
	return line, ""
}

// RenderTemplate walks the stored raw template line by line and rebuilds the
// displayed roster body: blank lines and comment lines are reproduced as
// written (with the group-mention placeholder substituted), and each role
// line is numbered by its position among role lines only, so the numbering
// always matches the slot's position in slots.
func RenderTemplate(raw string, slots []Slot, groupMention string) string {
	var b strings.Builder
	slotIdx := 0
	for i, line := range strings.Split(raw, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, CommentMarker) {
			b.WriteString(strings.ReplaceAll(line, MentionPlaceholder, groupMention))
			continue
		}
		if slotIdx >= len(slots) {
			// Raw template and slots are kept in sync by every edit; a role
			// line without a slot means the record is corrupt, render what
			// is left rather than panic.
			b.WriteString(line)
			continue
		}
		b.WriteString(renderSlotLine(slotIdx+1, &slots[slotIdx]))
		slotIdx++
	}
	return b.String()
}

func renderSlotLine(number int, slot *Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", number, slot.Label)
	if a, ok := slot.Assignee(); ok {
		fmt.Fprintf(&b, " <@%s>", a.ID)
	}
	if slot.Comment != "" {
		fmt.Fprintf(&b, " (%s)", slot.Comment)
	}
	return b.String()
}
