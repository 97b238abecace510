package guides

import "strings"

// PathSeparator joins node names into the path carried inside a button
// custom id.
const PathSeparator = ">"

// Node is one entry in the ZvZ roles guide tree. Leaves describe a concrete
// weapon, inner nodes group them by role.
type Node struct {
	Name     string
	Title    string
	Text     string
	Icon     string
	Children []Node
}

const rootIntro = `In organized group fights, it's important to have specific roles in your party to put proper fight. You'll need tanks, support, DPS, and healers. If you're missing one of these, things can get a bit tricky.

The number of each role really depends on the type of content or the caller. Some callers like having a lot of tanks, while others want more damage. In general, having a balanced team usually works best.

We'll go over some common roles in group fights and how they help the team do well. This is just from my own experience in the game, so it might not cover everything, but it's a good starting point for anyone interested in ZvZ content.`

var rolesRoot = Node{
	Name:     "roles",
	Title:    "Albion zvz roles",
	Text:     rootIntro,
	Icon:     "https://i.imgur.com/HlGNoNN.png",
	Children: rolesTree,
}

// Root is the panel shown when the roles guide is opened.
func Root() *Node {
	return &rolesRoot
}

// Find resolves a node by the path of names from the root. An empty path
// returns the root; a broken path returns nil.
func Find(path []string) *Node {
	node := &rolesRoot
	for _, name := range path {
		var next *Node
		for i := range node.Children {
			if node.Children[i].Name == name {
				next = &node.Children[i]
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// ParsePath splits a button path back into node names.
func ParsePath(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, PathSeparator)
}

// JoinPath is the inverse of ParsePath.
func JoinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}

var rolesTree = []Node{
	{
		Name:  "Tank",
		Title: "Tank Roles",
		Text:  "The tanks can sustain damage more than any other role, that's why they usually play in frontlines, there are different types of tanks and here are some of them",
		Children: []Node{
			{
				Name:  "Clumper Tank",
				Title: "Clumper Tanks",
				Text:  "The clumper or engage tanks are the ones who gather and clump enemy players at one place to help our DPS kill them, they can also do fake engages or help the caller catch more people",
				Children: []Node{
					{
						Name:  "Golem",
						Title: "Earthrune Staff (Golem)",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_SHAPESHIFTER_KEEPER?quality=4&size=60",
						Text:  "One of the best clumping weapons in the game; can make clumps both using W and E spell; the E spell pulls any amount of players in range; 25 seconds cooldown.",
					},
					{
						Name:  "Hoj",
						Title: "Hand of Justice",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_DUALMACE_AVALON?quality=4&size=60",
						Text:  "Very nice clumping weapon; used mostly in small-scale fights; needs more skill compared to golem; can only pull 10 players max; 30 seconds cooldown.",
					},
					{
						Name:  "1h Mace",
						Title: "1h Mace",
						Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_MACE?quality=4&size=60",
						Text:  "decent clumping weapon; you clump with your W spell (Air Compressor); pulls all players in range of the spell; 30 seconds cooldown",
					},
				},
			},
			{
				Name:  "Stopper Tank",
				Title: "Stopper Tanks",
				Text:  "The stopper tanks stop enemy engages and peel for the team, they carry interrupts, roots and silences",
				Children: []Node{
					{
						Name:  "Heavy Mace",
						Title: "Heavy Mace",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_MACE?quality=4&size=60",
						Text:  "Great stopping weapon; have many utilities to stop enemies; Q spell (silences); W spell (roots, interrupts); E spell (silences); used with hellion hood or judicator helmet",
					},
					{
						Name:  "1h Hammer",
						Title: "1h Hammer",
						Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_HAMMER?quality=4&size=60",
						Text:  "1h hammer is decent to stop and control enemy zerg; the E spell have long stun time; it doesn't have mobility but has short cooldown (15s); best played in brawl fights",
					},
					{
						Name:  "Great Hammer",
						Title: "Great Hammer",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_POLEHAMMER?quality=4&size=60",
						Text:  "Good stopping and zoning weapon; the E spell makes an area that interrupts and damages enemies standing in it",
					},
				},
			},
			{
				Name:  "Support Tank",
				Title: "Support Tanks",
				Text:  "This tanks support the team by puting pressure on enemy zerg or by helping the caller catch more people",
				Children: []Node{
					{
						Name:  "Staff of balance",
						Title: "Staff of balance",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_ROCKSTAFF_KEEPER?quality=4&size=60",
						Text:  "Pressure weapon; the E spell throws rocks over the enemy clump which forces them to spread or take heavy damage",
					},
					{
						Name:  "Forge Hammers",
						Title: "Forge Hammers",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_RAM_KEEPER?quality=4&size=60",
						Text:  "The E spell charges through enemies and knocks them up, good to open space for your team or punish a bad enemy position",
					},
				},
			},
		},
	},
	{
		Name:  "Support",
		Title: "Support Roles",
		Text:  "Supports make fights winnable: they protect the team, weaken the enemy and enable the DPS to get kills",
		Children: []Node{
			{
				Name:  "Defensive support",
				Title: "Defensive support",
				Text:  "Defensive supports protect the team with shields, cleanses and peel",
				Children: []Node{
					{
						Name:  "1h arcane",
						Title: "Arcane Staff",
						Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_ARCANESTAFF?quality=4&size=60",
						Text:  "The E spell gives a big shield to everyone around you, time it against enemy bombs and engages",
					},
					{
						Name:  "Great arcane",
						Title: "Great arcane",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_ARCANESTAFF?quality=4&size=60",
						Text:  "Protects the team with the E spell which makes allies immune to damage for a short time, one of the most important zvz supports",
					},
					{
						Name:  "Oathkeepers",
						Title: "Oathkeepers",
						Icon:  "https://render.albiononline.com/v1/item/T8_2H_DUALMACE_MORGANA?quality=4&size=60",
						Text:  "The E spell puts a dome that blocks enemy projectiles, strong to protect the clump from ranged damage",
					},
				},
			},
			{
				Name:  "Offensive support",
				Title: "Offensive support",
				Text:  "The offensive support is the ones who make it easier to secure kills, it's usually weapons that put debuffs on enemies and make them weaker and vulnerable to our damage",
				Children: []Node{
					{
						Name:  "HP cut",
						Title: "HP cut",
						Text:  "The hp cut support are weapons that reduce max and current health points to enemies, enemies with less health are easier to kill",
						Children: []Node{
							{
								Name:  "Incubus",
								Title: "Incubus Mace",
								Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_MACE_HELL?quality=4&size=60",
								Text:  "The E spell cuts the health of everyone in the targeted area, drop it on the clump right before your team engages",
							},
							{
								Name:  "Realmbreaker",
								Title: "Realmbreaker",
								Icon:  "https://render.albiononline.com/v1/item/T8_2H_AXE_AVALON?quality=4&size=60",
								Text:  "Cuts health in a big area with the E spell, needs good timing with the caller to land on the clump",
							},
						},
					},
					{
						Name:  "Resistance Reduction",
						Title: "Damage Resistance Reduction",
						Text:  "There are weapons that reduce the damage resistance from enemies, it's very imprortant to have some of them in the party to make sure you get kills when engaging; Enemies with less damage resistance are easier to kill",
						Children: []Node{
							{
								Name:  "Damnation",
								Title: "Damnation Staff",
								Icon:  "https://render.albiononline.com/v1/item/T8_2H_CURSEDSTAFF_MORGANA?quality=4&size=60",
								Text:  "The damnation E spell makes a big area of pierce, it reduces damage resistances to all people around the targeted area which makes it one of the best piercing weapons; the only downside is slow cast time which can be fixed using scholar robe or morgana cape",
							},
							{
								Name:  "Shadowcaller",
								Title: "Shadowcaller",
								Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_CURSEDSTAFF_AVALON?quality=4&size=60",
								Text:  "Single target pierce, mark the target the caller wants dead and your DPS will delete it",
							},
						},
					},
					{
						Name:  "Other offensive support",
						Title: "Other offensive support",
						Text:  "There are other offensive support weapons that give special abilities and helps the team secure kills in the engages",
						Children: []Node{
							{
								Name:  "Lifecurse",
								Title: "Lifecurse Staff",
								Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_CURSEDSTAFF_UNDEAD?quality=4&size=60",
								Text:  "The E spell puts a big anti-heal area on the clump, enemies inside receive much less healing which makes engages stick",
							},
						},
					},
				},
			},
		},
	},
	{
		Name:  "DPS",
		Title: "DPS Roles",
		Text:  "The DPS are the ones who actually kill people, they follow the caller and dump their damage on the clumps the tanks make",
		Children: []Node{
			{
				Name:  "Permafrost",
				Title: "Permafrost Prism",
				Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_FROSTSTAFF_AVALON?quality=4&size=60",
				Text:  "Strong area damage with crowd control, the E spell freezes enemies caught in it",
			},
			{
				Name:  "Hellfire",
				Title: "Hellfire Hands",
				Icon:  "https://render.albiononline.com/v1/item/T8_2H_DUALCASTER_AVALON?quality=4&size=60",
				Text:  "Hellfire Hands is also one of the best dps weapons, in addition to is good damage it also applies a debuff which reduces healing received",
			},
			{
				Name:  "Dawnsong",
				Title: "Dawnsong",
				Icon:  "https://render.albiononline.com/v1/item/T8_2H_FIRE_RINGPAIR_AVALON?quality=4&size=60",
				Text:  "Dawnsong is also one of the best dps weapons, it has nice burst damage in long area and also applies a debuff which reduces healing received to enemies hit",
			},
			{
				Name:  "Longbow",
				Title: "Longbow",
				Icon:  "https://render.albiononline.com/v1/item/T8_2H_LONGBOW?quality=4&size=60",
				Text:  "Classic ranged DPS, long range area damage with a slow on the E spell, easy to pick up and always useful",
			},
			{
				Name:  "Infernal Scythe",
				Title: "Infernal Scythe",
				Icon:  "https://render.albiononline.com/v1/item/T8_2H_SCYTHE_HELL?quality=4&size=60",
				Text:  "Brawl DPS with self sustain, shines when the fight collapses into melee range",
			},
		},
	},
	{
		Name:  "Healer",
		Title: "Healer Roles",
		Text:  "Healers keep everyone alive through the fight, they are always focused first so positioning matters more than anything",
		Children: []Node{
			{
				Name:  "Hallowfall",
				Title: "Hallowfall",
				Icon:  "https://render.albiononline.com/v1/item/T8_MAIN_HOLYSTAFF_AVALON?quality=4&size=60",
				Text:  "The main zvz healing weapon, instant burst heals on low cooldown, keep your party topped between engages",
			},
			{
				Name:  "Fallen",
				Title: "Fallen Staff",
				Icon:  "https://render.albiononline.com/v1/item/T8_2H_HOLYSTAFF_UNDEAD?quality=4&size=60",
				Text:  "Big area resurrection-like burst heal on the E spell, save it for when the enemy bomb lands",
			},
			{
				Name:  "Blight",
				Title: "Blight Staff",
				Icon:  "https://render.albiononline.com/v1/item/T8_2H_NATURESTAFF_KEEPER?quality=4&size=60",
				Text:  "Nature area healer, stack heal over time on the clump before the engage so the damage is already being healed when it lands",
			},
		},
	},
}
