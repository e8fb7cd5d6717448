package game

import "strings"

// Player is one roster entry as last asserted by the server
type Player struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Alive bool   `yaml:"alive"`
	Ready bool   `yaml:"ready"`
}

// DisplayName returns the name shown for the player in lists
func (p Player) DisplayName() string {
	if p.Name == "" {
		return "Unknown"
	}
	return p.Name
}

// TargetRef is how actions address the player: the id when the server
// sent one, else the name
func (p Player) TargetRef() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

// SelfIdentity is what the server told us about ourselves.
// ID stays empty until the first state message carrying you.id.
type SelfIdentity struct {
	ID   string `yaml:"id"`
	Role Role   `yaml:"role"`
}

// NormalizeName trims a display name and rejects empty ones
func NormalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", ErrNameRequired
	}
	return n, nil
}
