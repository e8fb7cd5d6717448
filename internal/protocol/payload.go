package protocol

import "encoding/json"

// payload gives lenient access to the fields of a data object. A field of the
// wrong JSON type is treated as absent.
type payload map[string]json.RawMessage

func payloadOf(raw json.RawMessage) payload {
	p, _ := object(raw)
	return p
}

func object(raw json.RawMessage) (payload, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		return nil, false
	}
	return p, true
}

func (p payload) str(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (p payload) number(key string) (float64, bool) {
	raw, ok := p[key]
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func (p payload) boolean(key string) (value, present bool) {
	raw, ok := p[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

func (p payload) isTrue(key string) bool {
	b, ok := p.boolean(key)
	return ok && b
}

func (p payload) isFalse(key string) bool {
	b, ok := p.boolean(key)
	return ok && !b
}

func (p payload) array(key string) ([]json.RawMessage, bool) {
	raw, ok := p[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}

func (p payload) object(key string) (payload, bool) {
	raw, ok := p[key]
	if !ok {
		return nil, false
	}
	return object(raw)
}
