package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Inbound message types
const (
	TypeHello     = "hello"
	TypeState     = "state"
	TypePhase     = "phase"
	TypeChat      = "chat"
	TypeVoteStart = "vote_start"
	TypeVoteEnd   = "vote_end"
	TypeEnd       = "end"
)

// Outbound message types
const (
	TypeVote = "vote"
	TypeKill = "kill"
)

// Envelope is the wire form {type, data}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeEnvelope parses raw as a JSON object. It reports false when raw is
// not JSON or is JSON but not an object; the caller should then treat raw as
// plain text.
func DecodeEnvelope(raw string) (Envelope, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return Envelope{}, false
	}

	var env Envelope
	if t, ok := fields["type"]; ok {
		// a non-string type leaves Type empty
		_ = json.Unmarshal(t, &env.Type)
	}
	if d, ok := fields["data"]; ok {
		env.Data = d
	}
	return env, true
}

// Encode produces the canonical wire form. Nil data is sent as {}.
func Encode(typ string, data any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s data: %w", typ, err)
	}
	if bytes.Equal(payload, []byte("null")) {
		payload = []byte("{}")
	}

	out, err := json.Marshal(Envelope{Type: typ, Data: payload})
	if err != nil {
		return "", fmt.Errorf("encode %s envelope: %w", typ, err)
	}
	return string(out), nil
}
