package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/uptrace/bun"
)

// WeaponCount is an aggregate row for the guide statistics views.
type WeaponCount struct {
	Weapon string `bun:"weapon"`
	Count  int64  `bun:"count"`
}

// UserCount aggregates guide openings per user.
type UserCount struct {
	UserID      string `bun:"user_id"`
	DisplayName string `bun:"display_name"`
	Count       int64  `bun:"count"`
}

type GuideStatRepository interface {
	Record(ctx context.Context, userID, displayName, weapon string) error
	TopWeapons(ctx context.Context, limit int) ([]WeaponCount, error)
	TopUsers(ctx context.Context, limit int) ([]UserCount, error)
	UserStats(ctx context.Context, userID string) ([]WeaponCount, error)
}

type guideStatRepository struct {
	db *bun.DB
}

func NewGuideStatRepository(db *bun.DB) GuideStatRepository {
	return &guideStatRepository{db: db}
}

func (r *guideStatRepository) Record(ctx context.Context, userID, displayName, weapon string) error {
	res, err := r.db.NewUpdate().
		Model((*models.GuideStat)(nil)).
		Set("count = count + 1").
		Set("display_name = ?", displayName).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND weapon = ?", userID, weapon).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update guide stat: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		stat := &models.GuideStat{
			UserID:      userID,
			DisplayName: displayName,
			Weapon:      weapon,
			Count:       1,
			UpdatedAt:   time.Now(),
		}
		if _, err := r.db.NewInsert().Model(stat).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert guide stat: %w", err)
		}
	}
	return nil
}

func (r *guideStatRepository) TopWeapons(ctx context.Context, limit int) ([]WeaponCount, error) {
	var out []WeaponCount
	err := r.db.NewSelect().
		Model((*models.GuideStat)(nil)).
		ColumnExpr("weapon").
		ColumnExpr("SUM(count) AS count").
		GroupExpr("weapon").
		OrderExpr("count DESC").
		Limit(limit).
		Scan(ctx, &out)
	return out, err
}

func (r *guideStatRepository) TopUsers(ctx context.Context, limit int) ([]UserCount, error) {
	var out []UserCount
	err := r.db.NewSelect().
		Model((*models.GuideStat)(nil)).
		ColumnExpr("user_id").
		ColumnExpr("MAX(display_name) AS display_name").
		ColumnExpr("SUM(count) AS count").
		GroupExpr("user_id").
		OrderExpr("count DESC").
		Limit(limit).
		Scan(ctx, &out)
	return out, err
}

func (r *guideStatRepository) UserStats(ctx context.Context, userID string) ([]WeaponCount, error) {
	var out []WeaponCount
	err := r.db.NewSelect().
		Model((*models.GuideStat)(nil)).
		ColumnExpr("weapon").
		ColumnExpr("SUM(count) AS count").
		Where("user_id = ?", userID).
		GroupExpr("weapon").
		OrderExpr("count DESC").
		Scan(ctx, &out)
	return out, err
}
