package store

import "strings"

// Change is the set of sub-states touched by one mutation
type Change uint8

const (
	ChangeRoom Change = 1 << iota
	ChangeRole
	// ChangePlayers is also reported when selfId changes since it moves the
	// "(you)" marker in the roster
	ChangePlayers
	ChangePhase
	ChangeChat
)

// Has reports whether every bit of o is set in c
func (c Change) Has(o Change) bool {
	return o != 0 && c&o == o
}

func (c Change) String() string {
	if c == 0 {
		return "none"
	}
	names := []struct {
		bit  Change
		name string
	}{
		{ChangeRoom, "room"},
		{ChangeRole, "role"},
		{ChangePlayers, "players"},
		{ChangePhase, "phase"},
		{ChangeChat, "chat"},
	}
	var parts []string
	for _, n := range names {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
