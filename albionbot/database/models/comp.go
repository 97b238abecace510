package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Comp is one durable party-composition record. Slots are embedded as JSONB
// because they are only ever read and written as a whole, from inside the
// per-comp operation queue.
type Comp struct {
	bun.BaseModel `bun:"table:comps,alias:cp"`

	ID          int64      `bun:"id,pk,autoincrement"`
	ChannelID   string     `bun:"channel_id,notnull"`
	ThreadID    string     `bun:"thread_id"`
	MessageID   string     `bun:"message_id"`
	OrganizerID string     `bun:"organizer_id,notnull"`
	Title       string     `bun:"title"`
	RawTemplate string     `bun:"raw_template,notnull"`
	Slots       []CompSlot `bun:"slots,type:jsonb"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull"`
}

// CompSlot is the persisted form of one roster slot. An empty AssigneeID
// means the slot is open.
type CompSlot struct {
	Label        string `json:"label"`
	Comment      string `json:"comment,omitempty"`
	AssigneeID   string `json:"assignee_id,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
}
