// Package render draws store changes as plain text lines.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"crewlink/internal/game"
	"crewlink/internal/store"
)

// Renderer writes one section per changed sub-state. Chat is append-only,
// so only lines not yet printed are written.
type Renderer struct {
	mu      sync.Mutex
	out     io.Writer
	printed int
}

// New creates a renderer writing to out
func New(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Attach subscribes the renderer to st and returns the unsubscribe func
func (r *Renderer) Attach(st *store.Store) func() {
	return st.Subscribe(r.Render)
}

// Render draws the parts of v named by c
func (r *Renderer) Render(c store.Change, v store.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.Has(store.ChangeRoom) || c.Has(store.ChangeRole) || c.Has(store.ChangePhase) {
		fmt.Fprintln(r.out, header(v))
	}
	if c.Has(store.ChangePlayers) {
		r.writeRoster(v)
	}
	if c.Has(store.ChangeChat) {
		// the log never shrinks; a shorter one means a new store
		if len(v.Messages) < r.printed {
			r.printed = 0
		}
		for _, m := range v.Messages[r.printed:] {
			fmt.Fprintln(r.out, ChatLine(m))
		}
		r.printed = len(v.Messages)
	}
}

// Roster prints the full roster and action targets on demand
func (r *Renderer) Roster(v store.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, header(v))
	r.writeRoster(v)

	targets := v.Targets()
	if len(targets) == 0 {
		fmt.Fprintln(r.out, "No targets.")
		return
	}
	ids := make([]string, 0, len(targets))
	for _, p := range targets {
		if ref := p.TargetRef(); ref != "" {
			ids = append(ids, ref)
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(r.out, "No targets.")
		return
	}
	fmt.Fprintf(r.out, "Targets: %s\n", strings.Join(ids, ", "))
}

// ConnectionState prints a connection state transition
func (r *Renderer) ConnectionState(s fmt.Stringer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "[connection: %s]\n", s)
}

// Line prints a free-form line, e.g. help text or a command error
func (r *Renderer) Line(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Renderer) writeRoster(v store.View) {
	fmt.Fprintf(r.out, "Players (%d):\n", len(v.Players))
	for _, p := range v.Players {
		fmt.Fprintf(r.out, "  %s\n", PlayerLine(v, p))
	}
}

func header(v store.View) string {
	return fmt.Sprintf("== %s | phase %s | %s ==", v.Room.Label(), v.Phase, v.Self.Role.DisplayName())
}

// PlayerLine formats one roster entry
func PlayerLine(v store.View, p game.Player) string {
	var b strings.Builder
	b.WriteString(p.DisplayName())
	if p.ID != "" {
		fmt.Fprintf(&b, " [%s]", p.ID)
	}
	if v.IsSelf(p) {
		b.WriteString(" (you)")
	}
	if !p.Alive {
		b.WriteString(" (dead)")
	}
	if p.Ready {
		b.WriteString(" ✓")
	}
	return b.String()
}

// ChatLine formats one chat log entry
func ChatLine(m game.ChatMessage) string {
	switch {
	case m.From == game.SystemSender && !m.Self:
		return "* " + m.Text
	case m.Self:
		return fmt.Sprintf("<%s> %s", m.From, m.Text)
	default:
		return fmt.Sprintf("%s: %s", m.From, m.Text)
	}
}
