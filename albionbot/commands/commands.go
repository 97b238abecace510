package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	Comp,
	Weapons,
	Roles,
	Bandit,
	GuideStats,
}
