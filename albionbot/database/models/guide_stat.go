package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GuideStat counts how often a user opened a weapon guide.
type GuideStat struct {
	bun.BaseModel `bun:"table:guide_stats,alias:gs"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      string    `bun:"user_id,notnull"`
	DisplayName string    `bun:"display_name"`
	Weapon      string    `bun:"weapon,notnull"`
	Count       int64     `bun:"count,notnull,default:0"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}
