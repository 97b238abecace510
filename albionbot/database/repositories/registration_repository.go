package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("discord account already registered")
	ErrGameNameTaken        = errors.New("game name already registered")
)

const registrationCacheTTL = 5 * time.Minute

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByDiscordID(ctx context.Context, discordID string) (*models.Registration, error)
	GetByGameName(ctx context.Context, gameName string) (*models.Registration, error)
	DeleteByDiscordID(ctx context.Context, discordID string) error
}

type registrationRepository struct {
	db    *bun.DB
	cache sync.Map
}

type registrationCacheEntry struct {
	reg       *models.Registration
	expiresAt time.Time
}

func NewRegistrationRepository(db *bun.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if existing, err := r.GetByDiscordID(ctx, reg.DiscordID); err == nil && existing != nil {
		return ErrAlreadyRegistered
	}
	if existing, err := r.GetByGameName(ctx, reg.GameName); err == nil && existing != nil {
		return ErrGameNameTaken
	}

	if reg.RegisteredAt.IsZero() {
		reg.RegisteredAt = time.Now()
	}
	if _, err := r.db.NewInsert().Model(reg).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	r.cache.Store(reg.DiscordID, registrationCacheEntry{reg: reg, expiresAt: time.Now().Add(registrationCacheTTL)})
	return nil
}

func (r *registrationRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.Registration, error) {
	if entry, ok := r.cache.Load(discordID); ok {
		cached := entry.(registrationCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.reg, nil
		}
		r.cache.Delete(discordID)
	}

	reg := new(models.Registration)
	err := r.db.NewSelect().Model(reg).Where("discord_id = ?", discordID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}

	r.cache.Store(discordID, registrationCacheEntry{reg: reg, expiresAt: time.Now().Add(registrationCacheTTL)})
	return reg, nil
}

func (r *registrationRepository) GetByGameName(ctx context.Context, gameName string) (*models.Registration, error) {
	reg := new(models.Registration)
	err := r.db.NewSelect().Model(reg).Where("lower(game_name) = lower(?)", gameName).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) DeleteByDiscordID(ctx context.Context, discordID string) error {
	_, err := r.db.NewDelete().
		Model((*models.Registration)(nil)).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	if err != nil {
		return err
	}
	r.cache.Delete(discordID)
	return nil
}
