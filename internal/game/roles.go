package game

// Role is the server-assigned role. Values other than the two known ones
// are stored as-is.
type Role string

const (
	RoleCrew   Role = "crew"
	RoleKiller Role = "killer"
)

// IsKiller reports whether the role grants the kill action
func (r Role) IsKiller() bool {
	return r == RoleKiller
}

// DisplayName returns the badge label for the role
func (r Role) DisplayName() string {
	if r.IsKiller() {
		return "Killer"
	}
	return "Crewmate"
}

// Phase is an opaque game-stage token owned by the server
type Phase string

const PhaseWaiting Phase = "waiting"
