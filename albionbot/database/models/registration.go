package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Registration links a Discord account to a verified Albion character.
// Both the Discord account and the character name are unique: one account
// holds at most one character and a character belongs to at most one account.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID           int64     `bun:"id,pk,autoincrement"`
	DiscordID    string    `bun:"discord_id,notnull,unique"`
	GameName     string    `bun:"game_name,notnull,unique"`
	GameID       string    `bun:"game_id,notnull"`
	RegisteredBy string    `bun:"registered_by,notnull"`
	RegisteredAt time.Time `bun:"registered_at,notnull"`
}
