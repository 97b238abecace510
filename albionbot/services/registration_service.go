package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/highland-brotherhood/albion-bot/albionbot/albion"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
)

var (
	ErrInvalidGameName = errors.New("invalid game name")

	// Albion names are 1 to 16 alphanumeric characters.
	gameNamePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,16}$`)
)

// RegistrationService links Discord accounts to verified Albion characters.
// It owns validation, the gameinfo lookup and the store write; role and
// nickname changes belong to the caller, which has the guild context.
type RegistrationService struct {
	repo   repositories.RegistrationRepository
	albion *albion.Client
}

func NewRegistrationService(repo repositories.RegistrationRepository, client *albion.Client) *RegistrationService {
	return &RegistrationService{repo: repo, albion: client}
}

// Register verifies gameName against the gameinfo API (exact match, case
// insensitive) and links it to the target Discord account. Returns the
// verified player so the caller can set the nickname and announce the guild.
func (s *RegistrationService) Register(ctx context.Context, targetDiscordID, gameName, invokerID string) (*albion.Player, error) {
	if !gameNamePattern.MatchString(gameName) || strings.EqualFold(gameName, "start") {
		return nil, ErrInvalidGameName
	}

	player, err := s.albion.FindExact(ctx, gameName)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		DiscordID:    targetDiscordID,
		GameName:     player.Name,
		GameID:       player.ID,
		RegisteredBy: invokerID,
		RegisteredAt: time.Now(),
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}

	slog.Info("Member registered",
		slog.String("type", "register"),
		slog.String("discord_id", targetDiscordID),
		slog.String("game_name", player.Name),
		slog.String("registered_by", invokerID))
	return player, nil
}

// Unregister removes the link for a Discord account and returns the removed
// row so the caller can name the freed character.
func (s *RegistrationService) Unregister(ctx context.Context, discordID string) (*models.Registration, error) {
	reg, err := s.repo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteByDiscordID(ctx, discordID); err != nil {
		return nil, fmt.Errorf("failed to remove registration: %w", err)
	}

	slog.Info("Member unregistered",
		slog.String("type", "register"),
		slog.String("discord_id", discordID),
		slog.String("game_name", reg.GameName))
	return reg, nil
}

// InfoByDiscordID looks up the registration of a Discord account.
func (s *RegistrationService) InfoByDiscordID(ctx context.Context, discordID string) (*models.Registration, error) {
	return s.repo.GetByDiscordID(ctx, discordID)
}

// InfoByGameName looks up a registration by game name, case insensitive.
func (s *RegistrationService) InfoByGameName(ctx context.Context, gameName string) (*models.Registration, error) {
	return s.repo.GetByGameName(ctx, gameName)
}

// Nickname builds the server nickname for a verified player.
func (s *RegistrationService) Nickname(player *albion.Player) string {
	return albion.FormatPlayerName(player)
}
