package protocol

import (
	"encoding/json"
	"strconv"
)

// Message is one decoded inbound frame. The concrete type is one of Hello,
// State, PhaseChange, Chat, VoteStart, VoteEnd, End, Unknown or PlainText.
type Message interface {
	isMessage()
}

// Hello is sent by the server once the socket is accepted
type Hello struct {
	Room string
	Name string
}

// State is a full snapshot. Only fields the server actually sent are set;
// HasPlayers distinguishes "no roster" from "empty roster".
type State struct {
	Room       string
	Phase      string
	Players    []PlayerSnap
	HasPlayers bool
	You        *You
}

// PlayerSnap is one roster entry on the wire
type PlayerSnap struct {
	ID    string
	Name  string
	Alive bool
	Ready bool
}

// You carries the receiving client's identity inside a state message
type You struct {
	ID   string
	Role string
}

// PhaseChange announces a new phase
type PhaseChange struct {
	Status string
}

// Chat is a relayed chat line
type Chat struct {
	From string
	Text string
}

// VoteStart opens a vote. EndsInSec is zero when the server did not say.
type VoteStart struct {
	EndsInSec float64
}

// Seconds formats the countdown, defaulting to 10
func (v VoteStart) Seconds() string {
	if v.EndsInSec == 0 {
		return "10"
	}
	return strconv.FormatFloat(v.EndsInSec, 'f', -1, 64)
}

// VoteEnd closes a vote
type VoteEnd struct {
	Note string
}

// End ends the game
type End struct {
	Result string
}

// Unknown is a well-formed envelope of a type this client does not know
type Unknown struct {
	Type string
	Data json.RawMessage
}

// PlainText is a frame that was not a JSON object
type PlainText struct {
	Raw string
}

func (Hello) isMessage()       {}
func (State) isMessage()       {}
func (PhaseChange) isMessage() {}
func (Chat) isMessage()        {}
func (VoteStart) isMessage()   {}
func (VoteEnd) isMessage()     {}
func (End) isMessage()         {}
func (Unknown) isMessage()     {}
func (PlainText) isMessage()   {}

// Decode turns one text frame into a Message. It never fails: anything that
// is not a JSON object comes back as PlainText.
func Decode(raw string) Message {
	env, ok := DecodeEnvelope(raw)
	if !ok {
		return PlainText{Raw: raw}
	}
	return Parse(env)
}

// Parse maps an envelope onto its typed variant
func Parse(env Envelope) Message {
	d := payloadOf(env.Data)

	switch env.Type {
	case TypeHello:
		return Hello{Room: d.str("room"), Name: d.str("name")}

	case TypeState:
		st := State{Room: d.str("room"), Phase: d.str("phase")}
		if items, ok := d.array("players"); ok {
			st.HasPlayers = true
			st.Players = make([]PlayerSnap, 0, len(items))
			for _, item := range items {
				p, ok := object(item)
				if !ok {
					continue
				}
				st.Players = append(st.Players, PlayerSnap{
					ID:   p.str("id"),
					Name: p.str("name"),
					// only an explicit false marks a player dead
					Alive: !p.isFalse("alive"),
					Ready: p.isTrue("ready"),
				})
			}
		}
		if you, ok := d.object("you"); ok {
			st.You = &You{ID: you.str("id"), Role: you.str("role")}
		}
		return st

	case TypePhase:
		return PhaseChange{Status: d.str("status")}

	case TypeChat:
		return Chat{From: d.str("from"), Text: d.str("text")}

	case TypeVoteStart:
		n, _ := d.number("endsInSec")
		return VoteStart{EndsInSec: n}

	case TypeVoteEnd:
		return VoteEnd{Note: d.str("note")}

	case TypeEnd:
		return End{Result: d.str("result")}

	default:
		return Unknown{Type: env.Type, Data: env.Data}
	}
}
