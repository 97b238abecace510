package albionbot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/highland-brotherhood/albion-bot/albionbot/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log      LogConfig         `toml:"log"`
	Bot      BotConfig         `toml:"bot"`
	DB       database.DBConfig `toml:"db"`
	Spaces   SpacesConfig      `toml:"spaces"`
	Register RegisterConfig    `toml:"register"`
	Comp     CompConfig        `toml:"comp"`
	Albion   AlbionConfig      `toml:"albion"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type SpacesConfig struct {
	Key       string `toml:"key"`
	Secret    string `toml:"secret"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	GuideRoot string `toml:"guide_root"`
}

// RegisterConfig drives the !register command family.
type RegisterConfig struct {
	// Channels where member commands are allowed; admins bypass the check.
	Channels []snowflake.ID `toml:"channels"`
	// Roles that may register/unregister other members.
	AdminRoles []snowflake.ID `toml:"admin_roles"`
	// Role granted after a successful registration.
	VisitorRole snowflake.ID `toml:"visitor_role"`
	// Category whose new channels get a ticket welcome.
	TicketCategory snowflake.ID `toml:"ticket_category"`
}

// CompConfig drives the comp sign-up subsystem.
type CompConfig struct {
	// Role mentioned where a template writes the group placeholder.
	GroupRole snowflake.ID `toml:"group_role"`
	// Roles that may manage any comp regardless of organizer.
	SuperAdminRoles []snowflake.ID `toml:"super_admin_roles"`
}

type AlbionConfig struct {
	// Gameinfo API base URL; empty selects the Europe server.
	BaseURL string `toml:"base_url"`
}
