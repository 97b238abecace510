package comp

import "errors"

var (
	ErrSlotTaken = errors.New("slot already taken")
	ErrSlotEmpty = errors.New("slot is already empty")
)

// Assignee is the person currently bound to a slot. The display name is
// cached at signup time so rendering never has to resolve the identity again.
type Assignee struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Slot is one role position in a comp. It is either empty or held by exactly
// one assignee; the only way to move between those states is Claim/Release,
// so a held slot always carries a non-empty assignee id.
type Slot struct {
	Label    string
	Comment  string
	assignee *Assignee
}

func NewSlot(label, comment string) Slot {
	return Slot{Label: label, Comment: comment}
}

func (s *Slot) Held() bool {
	return s.assignee != nil
}

// Assignee returns the current holder, if any.
func (s *Slot) Assignee() (Assignee, bool) {
	if s.assignee == nil {
		return Assignee{}, false
	}
	return *s.assignee, true
}

// Claim binds a holder to an empty slot.
func (s *Slot) Claim(a Assignee) error {
	if s.assignee != nil {
		return ErrSlotTaken
	}
	if a.ID == "" {
		return errors.New("assignee id must not be empty")
	}
	s.assignee = &Assignee{ID: a.ID, DisplayName: a.DisplayName}
	return nil
}

// Release clears a held slot.
func (s *Slot) Release() error {
	if s.assignee == nil {
		return ErrSlotEmpty
	}
	s.assignee = nil
	return nil
}

// HeldBy reports whether the slot is currently held by the given actor.
func (s *Slot) HeldBy(actorID string) bool {
	return s.assignee != nil && s.assignee.ID == actorID
}
