package store

import (
	"fmt"
	"slices"
	"sync"

	"crewlink/internal/game"
	"crewlink/internal/protocol"
)

// Store holds the single local snapshot of the room. All writes go through
// Apply or one of the named local operations below.
type Store struct {
	mu       sync.RWMutex
	username string
	room     game.Room
	self     game.SelfIdentity
	phase    game.Phase
	players  []game.Player
	messages []game.ChatMessage

	bus *notifier
}

// New creates a store holding the pre-join defaults
func New() *Store {
	return &Store{
		room:  game.DefaultRoom,
		self:  game.SelfIdentity{Role: game.RoleCrew},
		phase: game.PhaseWaiting,
		bus:   newNotifier(),
	}
}

// Subscribe registers a listener; call the returned func to remove it
func (s *Store) Subscribe(l Listener) func() {
	return s.bus.Subscribe(l)
}

// View returns a deep copy of the current state
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Username returns the local display name
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Role returns the last role asserted by the server
func (s *Store) Role() game.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.self.Role
}

// Join records the local choice of name and room before connecting
func (s *Store) Join(name string, room game.Room) Change {
	return s.mutate(func() Change {
		var c Change
		s.username = name
		if s.room != room {
			s.room = room
			c |= ChangeRoom
		}
		s.appendLocked(game.SystemMessage(fmt.Sprintf("%s joined %s (#%s).", name, room.Name, room.Code)))
		return c | ChangeChat
	})
}

// AppendNotice appends a system line
func (s *Store) AppendNotice(text string) Change {
	return s.mutate(func() Change {
		s.appendLocked(game.SystemMessage(text))
		return ChangeChat
	})
}

// AppendSelfChat records a chat line we wrote but could not send
func (s *Store) AppendSelfChat(text string) Change {
	return s.mutate(func() Change {
		from := s.username
		if from == "" {
			from = "You"
		}
		s.appendLocked(game.ChatMessage{From: from, Text: text, Self: true})
		return ChangeChat
	})
}

// Apply folds one inbound message into the state
func (s *Store) Apply(msg protocol.Message) Change {
	return s.mutate(func() Change {
		switch m := msg.(type) {
		case protocol.Hello:
			return s.applyHello(m)
		case protocol.State:
			return s.applyState(m)
		case protocol.PhaseChange:
			c := s.setPhase(m.Status)
			s.appendLocked(game.SystemMessage("Phase: " + string(s.phase)))
			return c | ChangeChat
		case protocol.Chat:
			from := m.From
			if from == "" {
				from = "Unknown"
			}
			s.appendLocked(game.ChatMessage{From: from, Text: m.Text, Self: from == s.username})
			return ChangeChat
		case protocol.VoteStart:
			s.appendLocked(game.SystemMessage(fmt.Sprintf("Voting started (%ss)…", m.Seconds())))
			return ChangeChat
		case protocol.VoteEnd:
			note := m.Note
			if note == "" {
				note = "Voting ended."
			}
			s.appendLocked(game.SystemMessage(note))
			return ChangeChat
		case protocol.End:
			s.appendLocked(game.SystemMessage("Game ended: " + m.Result))
			return ChangeChat
		case protocol.Unknown:
			t := m.Type
			if t == "" {
				t = "(untyped)"
			}
			s.appendLocked(game.SystemMessage("Unknown event: " + t))
			return ChangeChat
		case protocol.PlainText:
			s.appendLocked(game.SystemMessage(m.Raw))
			return ChangeChat
		default:
			s.appendLocked(game.SystemMessage(fmt.Sprintf("Unknown event: %T", msg)))
			return ChangeChat
		}
	})
}

func (s *Store) applyHello(m protocol.Hello) Change {
	c := s.setRoomCode(m.Room)
	name := m.Name
	if name == "" {
		name = s.username
	}
	s.appendLocked(game.SystemMessage(fmt.Sprintf("Connected to room #%s as %s", s.room.Code, name)))
	return c | ChangeChat
}

func (s *Store) applyState(m protocol.State) Change {
	c := s.setRoomCode(m.Room)
	c |= s.setPhase(m.Phase)

	if m.HasPlayers {
		roster := make([]game.Player, 0, len(m.Players))
		for _, p := range m.Players {
			roster = append(roster, game.Player{ID: p.ID, Name: p.Name, Alive: p.Alive, Ready: p.Ready})
		}
		if !slices.Equal(s.players, roster) {
			c |= ChangePlayers
		}
		s.players = roster
	}

	if m.You != nil {
		if m.You.ID != "" && m.You.ID != s.self.ID {
			s.self.ID = m.You.ID
			c |= ChangePlayers
		}
		if m.You.Role != "" && game.Role(m.You.Role) != s.self.Role {
			s.self.Role = game.Role(m.You.Role)
			c |= ChangeRole
		}
	}
	return c
}

func (s *Store) setRoomCode(code string) Change {
	if code == "" || code == s.room.Code {
		return 0
	}
	s.room.Code = code
	return ChangeRoom
}

func (s *Store) setPhase(phase string) Change {
	if phase == "" || game.Phase(phase) == s.phase {
		return 0
	}
	s.phase = game.Phase(phase)
	return ChangePhase
}

func (s *Store) appendLocked(m game.ChatMessage) {
	s.messages = append(s.messages, m)
}

// mutate runs fn under the write lock, then publishes outside of it so
// listeners may read the store
func (s *Store) mutate(fn func() Change) Change {
	s.mu.Lock()
	c := fn()
	v := s.viewLocked()
	s.mu.Unlock()

	if c != 0 {
		s.bus.Publish(c, v)
	}
	return c
}

func (s *Store) viewLocked() View {
	return View{
		Username: s.username,
		Room:     s.room,
		Self:     s.self,
		Phase:    s.phase,
		Players:  slices.Clone(s.players),
		Messages: slices.Clone(s.messages),
	}
}
