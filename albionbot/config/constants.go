package config

import "time"

// UI and Display Constants
const (
	// Colors
	ErrorColor   = 0xE74C3C
	SuccessColor = 0x2ECC71
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	GuideColor      = 0xE67E22
	RolesGuideColor = 0xF1C40F
	BanditColor     = 0xFEFE92

	EmbedDefaultColor = 0x2B2D31

	BanditThumbnail     = "https://i.imgur.com/t4QMNiq.png"
	RolesGuideThumbnail = "https://i.imgur.com/HlGNoNN.png"
)

// Timeouts and Intervals
const (
	DefaultQueryTimeout     = 30 * time.Second
	SearchTimeout           = 10 * time.Second
	CommandExecutionTimeout = 10 * time.Second

	// Unregistering waits for an explicit button press; silence keeps the
	// registration.
	UnregisterConfirmWindow = 30 * time.Second

	// New ticket channels get a welcome once the opener is resolvable, or
	// a fallback prompt after this long.
	TicketHandshakeWindow = 15 * time.Second

	CacheExpiration = 5 * time.Minute
	CleanupInterval = 6 * time.Hour
)

// Bandit event timing: the next spawn window opens 3.5 hours after the
// previous start and closes at 6 hours, announced 15 minutes early.
const (
	BanditWindowEarliest = 3*time.Hour + 30*time.Minute - 15*time.Minute
	BanditWindowLatest   = 6*time.Hour - 15*time.Minute
)

// Discord limits
const (
	MaxButtonsPerRow  = 5
	MaxActionRows     = 5
	MaxNicknameLength = 32
	MaxEmbedLength    = 4096
)
