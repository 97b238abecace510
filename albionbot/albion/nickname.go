package albion

import "strings"

// nicknameLimit is Discord's hard cap on guild nicknames.
const nicknameLimit = 32

// BuildNickname produces the server nickname for a registered member:
// "[TAG] Name", where the tag is the first five characters of the guild
// name. A guildless player keeps their bare game name.
func BuildNickname(guildName, playerName string) string {
	guildName = strings.TrimSpace(guildName)
	if guildName == "" {
		return truncate(playerName, nicknameLimit)
	}
	tag := guildName
	if len(tag) > 5 {
		tag = tag[:5]
	}
	return truncate("["+tag+"] "+playerName, nicknameLimit)
}

// FormatPlayerName renders a player with their guild tag for display. A
// leading "the " in the guild name is dropped before the tag is cut, so
// "The Highland Brotherhood" tags as [Highl] rather than [The H].
func FormatPlayerName(p *Player) string {
	guild := p.GuildName
	if strings.HasPrefix(strings.ToLower(guild), "the ") {
		guild = guild[4:]
	}
	return BuildNickname(guild, p.Name)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
