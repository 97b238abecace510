package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/uptrace/bun"
)

var ErrCompNotFound = errors.New("comp not found")

// RetentionHorizon is how long a comp record survives before the background
// cleanup purges it.
const RetentionHorizon = 15 * 24 * time.Hour

type CompRepository interface {
	Create(ctx context.Context, comp *models.Comp) error
	GetByID(ctx context.Context, id int64) (*models.Comp, error)
	GetByThreadID(ctx context.Context, threadID string) (*models.Comp, error)
	GetByMessageID(ctx context.Context, messageID string) (*models.Comp, error)
	Update(ctx context.Context, comp *models.Comp) error
	Delete(ctx context.Context, id int64) error
	DeleteByMessageID(ctx context.Context, messageID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	StartCleanupRoutine(ctx context.Context)
}

type compRepository struct {
	db *bun.DB
}

func NewCompRepository(db *bun.DB) CompRepository {
	return &compRepository{db: db}
}

func (r *compRepository) Create(ctx context.Context, comp *models.Comp) error {
	now := time.Now()
	comp.CreatedAt = now
	comp.UpdatedAt = now
	_, err := r.db.NewInsert().Model(comp).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create comp: %w", err)
	}
	return nil
}

func (r *compRepository) GetByID(ctx context.Context, id int64) (*models.Comp, error) {
	comp := new(models.Comp)
	err := r.db.NewSelect().Model(comp).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompNotFound
	}
	if err != nil {
		return nil, err
	}
	return comp, nil
}

func (r *compRepository) GetByThreadID(ctx context.Context, threadID string) (*models.Comp, error) {
	comp := new(models.Comp)
	err := r.db.NewSelect().Model(comp).Where("thread_id = ?", threadID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompNotFound
	}
	if err != nil {
		return nil, err
	}
	return comp, nil
}

func (r *compRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Comp, error) {
	comp := new(models.Comp)
	err := r.db.NewSelect().Model(comp).Where("message_id = ?", messageID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompNotFound
	}
	if err != nil {
		return nil, err
	}
	return comp, nil
}

func (r *compRepository) Update(ctx context.Context, comp *models.Comp) error {
	comp.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().Model(comp).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update comp %d: %w", comp.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCompNotFound
	}
	return nil
}

func (r *compRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().Model((*models.Comp)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *compRepository) DeleteByMessageID(ctx context.Context, messageID string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Comp)(nil)).
		Where("message_id = ?", messageID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *compRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Comp)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *compRepository) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(config.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := r.DeleteOlderThan(ctx, time.Now().Add(-RetentionHorizon))
				if err != nil {
					slog.Error("Failed to purge expired comps",
						slog.String("type", "db"),
						slog.Any("error", err))
					continue
				}
				if purged > 0 {
					slog.Info("Purged expired comps",
						slog.String("type", "db"),
						slog.Int64("count", purged))
				}
			}
		}
	}()
}
