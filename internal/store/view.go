package store

import (
	"slices"

	"crewlink/internal/game"

	"gopkg.in/yaml.v3"
)

// View is a detached copy of the store, enough to redraw everything
type View struct {
	Username string             `yaml:"username"`
	Room     game.Room          `yaml:"room"`
	Self     game.SelfIdentity  `yaml:"self"`
	Phase    game.Phase         `yaml:"phase"`
	Players  []game.Player      `yaml:"players"`
	Messages []game.ChatMessage `yaml:"messages"`
}

// IsSelf prefers the server-issued id and falls back to the display name
// until that id is known
func (v View) IsSelf(p game.Player) bool {
	if v.Self.ID != "" {
		return p.ID == v.Self.ID
	}
	return p.Name != "" && p.Name == v.Username
}

// Targets lists the players an action can be aimed at: alive and not us
func (v View) Targets() []game.Player {
	var out []game.Player
	for _, p := range v.Players {
		if p.Alive && !v.IsSelf(p) {
			out = append(out, p)
		}
	}
	return out
}

// FindTarget resolves an id or a case-sensitive name among Targets
func (v View) FindTarget(ref string) (game.Player, bool) {
	targets := v.Targets()
	if i := slices.IndexFunc(targets, func(p game.Player) bool { return p.ID == ref }); i >= 0 {
		return targets[i], true
	}
	if i := slices.IndexFunc(targets, func(p game.Player) bool { return p.Name == ref }); i >= 0 {
		return targets[i], true
	}
	return game.Player{}, false
}

// YAML renders the view as a YAML document
func (v View) YAML() ([]byte, error) {
	return yaml.Marshal(v)
}
