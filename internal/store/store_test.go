package store

import (
	"fmt"
	"testing"

	"crewlink/internal/game"
	"crewlink/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioState = `{"type":"state","data":{"room":"Z9","phase":"discussion","players":[{"id":"p1","name":"Nova","alive":true},{"id":"p2","name":"Bolt","alive":false}],"you":{"id":"p1","role":"killer"}}}`

func apply(s *Store, frames ...string) {
	for _, f := range frames {
		s.Apply(protocol.Decode(f))
	}
}

func TestNew(t *testing.T) {
	v := New().View()

	assert.Equal(t, game.DefaultRoom, v.Room)
	assert.Equal(t, game.RoleCrew, v.Self.Role)
	assert.Empty(t, v.Self.ID)
	assert.Equal(t, game.PhaseWaiting, v.Phase)
	assert.Empty(t, v.Players)
	assert.Empty(t, v.Messages)
}

func TestApplyStateScenario(t *testing.T) {
	s := New()
	c := s.Apply(protocol.Decode(scenarioState))

	v := s.View()
	assert.Equal(t, "Z9", v.Room.Code)
	assert.Equal(t, game.Phase("discussion"), v.Phase)
	require.Len(t, v.Players, 2)
	assert.Equal(t, game.Player{ID: "p2", Name: "Bolt", Alive: false}, v.Players[1])
	assert.Equal(t, "p1", v.Self.ID)
	assert.Equal(t, game.RoleKiller, v.Self.Role)
	assert.Empty(t, v.Messages, "state messages add no notice")

	assert.True(t, c.Has(ChangeRoom|ChangeRole|ChangePlayers|ChangePhase))
	assert.False(t, c.Has(ChangeChat))
}

func TestApplyPlainText(t *testing.T) {
	s := New()
	apply(s, scenarioState)
	before := s.View()

	c := s.Apply(protocol.Decode("not json"))
	after := s.View()

	assert.Equal(t, ChangeChat, c)
	require.Len(t, after.Messages, len(before.Messages)+1)
	assert.Equal(t, game.SystemMessage("not json"), after.Messages[len(after.Messages)-1])

	after.Messages = before.Messages
	assert.Equal(t, before, after, "nothing but the chat log may change")
}

func TestApplyUnknownTypeIsSurfaced(t *testing.T) {
	types := []string{"emergency", "vote", "kill", "STATE", "hello ", "x-sabotage", "ready", "leave"}

	for _, typ := range types {
		t.Run(typ, func(t *testing.T) {
			s := New()
			apply(s, scenarioState)
			before := s.View()

			frame := fmt.Sprintf(`{"type":%q,"data":{}}`, typ)
			c := s.Apply(protocol.Decode(frame))
			after := s.View()

			assert.Equal(t, ChangeChat, c)
			require.Len(t, after.Messages, len(before.Messages)+1)
			assert.Equal(t, game.SystemMessage("Unknown event: "+typ), after.Messages[len(after.Messages)-1])
			assert.Equal(t, before.Players, after.Players)
			assert.Equal(t, before.Room, after.Room)
			assert.Equal(t, before.Phase, after.Phase)
			assert.Equal(t, before.Self, after.Self)
		})
	}

	t.Run("untyped envelope", func(t *testing.T) {
		s := New()
		s.Apply(protocol.Decode(`{"data":{}}`))
		assert.Equal(t, "Unknown event: (untyped)", s.View().Messages[0].Text)
	})
}

func TestApplyStateIsIdempotent(t *testing.T) {
	once := New()
	apply(once, scenarioState)

	twice := New()
	apply(twice, scenarioState)
	c := twice.Apply(protocol.Decode(scenarioState))

	assert.Equal(t, Change(0), c, "second identical snapshot changes nothing")

	a, err := once.View().YAML()
	require.NoError(t, err)
	b, err := twice.View().YAML()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestStateWithoutPlayersKeepsRoster(t *testing.T) {
	frames := []string{
		`{"type":"state","data":{}}`,
		`{"type":"state","data":{"room":"Q1"}}`,
		`{"type":"state","data":{"phase":"vote","you":{"id":"p9","role":"crew"}}}`,
		`{"type":"state","data":{"players":null}}`,
		`{"type":"state","data":{"players":"everyone"}}`,
		`{"type":"state"}`,
	}

	for _, f := range frames {
		t.Run(f, func(t *testing.T) {
			s := New()
			apply(s, scenarioState)
			before := s.View().Players

			s.Apply(protocol.Decode(f))
			assert.Equal(t, before, s.View().Players)
		})
	}
}

func TestRosterReplacedWholesale(t *testing.T) {
	s := New()
	apply(s, scenarioState)
	apply(s, `{"type":"state","data":{"players":[{"id":"p3","name":"Echo","alive":true}]}}`)

	assert.Equal(t, []game.Player{{ID: "p3", Name: "Echo", Alive: true}}, s.View().Players)

	apply(s, `{"type":"state","data":{"players":[]}}`)
	assert.Empty(t, s.View().Players, "an empty list is still an authoritative roster")
}

func TestApplyIsOrderPreserving(t *testing.T) {
	frames := []string{
		`{"type":"hello","data":{"room":"K2","name":"Nova"}}`,
		scenarioState,
		`{"type":"chat","data":{"from":"Bolt","text":"first"}}`,
		"joined: Echo",
		`{"type":"phase","data":{"status":"vote"}}`,
		`{"type":"vote_start","data":{}}`,
		`{"type":"chat","data":{"from":"Nova","text":"second"}}`,
		`{"type":"vote_end","data":{}}`,
		`{"type":"end","data":{"result":"crew wins"}}`,
	}

	batch := New()
	batch.Join("Nova", game.DefaultRoom)
	apply(batch, frames...)

	stepped := New()
	stepped.Join("Nova", game.DefaultRoom)
	for _, f := range frames {
		stepped.Apply(protocol.Decode(f))
	}

	assert.Equal(t, batch.View(), stepped.View())

	texts := make([]string, 0)
	for _, m := range stepped.View().Messages {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{
		"Nova joined Skeld (#A1).",
		"Connected to room #K2 as Nova",
		"first",
		"joined: Echo",
		"Phase: vote",
		"Voting started (10s)…",
		"second",
		"Voting ended.",
		"Game ended: crew wins",
	}, texts)
}

func TestApplyNotices(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  game.ChatMessage
	}{
		{
			name:  "hello with server values",
			frame: `{"type":"hello","data":{"room":"B7","name":"Captain"}}`,
			want:  game.SystemMessage("Connected to room #B7 as Captain"),
		},
		{
			name:  "hello falls back to local values",
			frame: `{"type":"hello","data":{}}`,
			want:  game.SystemMessage("Connected to room #A1 as Nova"),
		},
		{
			name:  "phase",
			frame: `{"type":"phase","data":{"status":"discussion"}}`,
			want:  game.SystemMessage("Phase: discussion"),
		},
		{
			name:  "phase without status repeats current",
			frame: `{"type":"phase","data":{}}`,
			want:  game.SystemMessage("Phase: waiting"),
		},
		{
			name:  "vote_start with countdown",
			frame: `{"type":"vote_start","data":{"endsInSec":25}}`,
			want:  game.SystemMessage("Voting started (25s)…"),
		},
		{
			name:  "vote_end with note",
			frame: `{"type":"vote_end","data":{"note":"Bolt was ejected."}}`,
			want:  game.SystemMessage("Bolt was ejected."),
		},
		{
			name:  "end without result",
			frame: `{"type":"end","data":{}}`,
			want:  game.SystemMessage("Game ended: "),
		},
		{
			name:  "chat from someone else",
			frame: `{"type":"chat","data":{"from":"Bolt","text":"where?"}}`,
			want:  game.ChatMessage{From: "Bolt", Text: "where?"},
		},
		{
			name:  "chat from our own name is self",
			frame: `{"type":"chat","data":{"from":"Nova","text":"electrical"}}`,
			want:  game.ChatMessage{From: "Nova", Text: "electrical", Self: true},
		},
		{
			name:  "chat without fields",
			frame: `{"type":"chat","data":{}}`,
			want:  game.ChatMessage{From: "Unknown", Text: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Join("Nova", game.DefaultRoom)
			s.Apply(protocol.Decode(tt.frame))

			msgs := s.View().Messages
			require.Len(t, msgs, 2)
			assert.Equal(t, tt.want, msgs[1])
		})
	}
}

func TestHelloOverridesRoomCode(t *testing.T) {
	s := New()
	s.Join("Nova", game.Room{Code: "lower", Name: "Custom"})
	c := s.Apply(protocol.Decode(`{"type":"hello","data":{"room":"LOWER"}}`))

	assert.True(t, c.Has(ChangeRoom))
	assert.Equal(t, game.Room{Code: "LOWER", Name: "Custom"}, s.View().Room)
}

func TestRoleChangesAreTrustedUnconditionally(t *testing.T) {
	s := New()
	apply(s, scenarioState)
	c := s.Apply(protocol.Decode(`{"type":"state","data":{"you":{"role":"ghost"}}}`))

	assert.Equal(t, ChangeRole, c)
	assert.Equal(t, game.Role("ghost"), s.Role())
	assert.Equal(t, "p1", s.View().Self.ID, "missing you.id keeps the known id")
}

func TestLocalOperations(t *testing.T) {
	s := New()

	c := s.AppendSelfChat("before join")
	assert.Equal(t, ChangeChat, c)
	assert.Equal(t, game.ChatMessage{From: "You", Text: "before join", Self: true}, s.View().Messages[0])

	c = s.Join("Nova", game.Room{Code: "C3", Name: "Polus"})
	assert.Equal(t, ChangeRoom|ChangeChat, c)
	assert.Equal(t, "Nova", s.Username())

	s.AppendSelfChat("hello")
	s.AppendNotice("Disconnected from server.")

	msgs := s.View().Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, game.SystemMessage("Nova joined Polus (#C3)."), msgs[1])
	assert.Equal(t, game.ChatMessage{From: "Nova", Text: "hello", Self: true}, msgs[2])
	assert.Equal(t, game.SystemMessage("Disconnected from server."), msgs[3])
}

func TestViewIsDetached(t *testing.T) {
	s := New()
	apply(s, scenarioState)

	v := s.View()
	v.Players[0].Alive = false
	v.Messages = append(v.Messages, game.SystemMessage("local"))

	fresh := s.View()
	assert.True(t, fresh.Players[0].Alive)
	assert.Empty(t, fresh.Messages)
}

func TestSubscribe(t *testing.T) {
	s := New()

	var changes []Change
	var lastView View
	unsubscribe := s.Subscribe(func(c Change, v View) {
		changes = append(changes, c)
		lastView = v
	})

	apply(s, scenarioState)
	apply(s, scenarioState)
	s.AppendNotice("hi")

	require.Len(t, changes, 2, "a no-op snapshot publishes nothing")
	assert.True(t, changes[0].Has(ChangePlayers))
	assert.Equal(t, ChangeChat, changes[1])
	assert.Equal(t, "hi", lastView.Messages[0].Text)

	unsubscribe()
	unsubscribe()
	s.AppendNotice("after")
	assert.Len(t, changes, 2)
}

func TestListenerMayReadStore(t *testing.T) {
	s := New()
	var seen int
	s.Subscribe(func(Change, View) {
		seen = len(s.View().Messages)
	})

	s.AppendNotice("one")
	assert.Equal(t, 1, seen)
}

func TestChangeString(t *testing.T) {
	assert.Equal(t, "none", Change(0).String())
	assert.Equal(t, "room|chat", (ChangeRoom | ChangeChat).String())
	assert.Equal(t, "room|role|players|phase|chat", (ChangeRoom | ChangeRole | ChangePlayers | ChangePhase | ChangeChat).String())
}
