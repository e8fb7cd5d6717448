package intent

import (
	"fmt"
	"strings"

	"crewlink/internal/logging"
	"crewlink/internal/metrics"
	"crewlink/internal/protocol"
	"crewlink/internal/store"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Link is the outbound half of a connection
type Link interface {
	Open() bool
	WriteFrame(frame string) error
}

// Outcome says what happened to an intent
type Outcome int

const (
	// Ignored means there was nothing to send (blank text or target)
	Ignored Outcome = iota
	// Sent means the frame was handed to an open transport
	Sent
	// Echoed means sending failed and the intent was recorded locally
	Echoed
	// Throttled means the chat limiter refused the message; it was recorded
	// locally only
	Throttled
)

func (o Outcome) String() string {
	switch o {
	case Sent:
		return "sent"
	case Echoed:
		return "echoed"
	case Throttled:
		return "throttled"
	default:
		return "ignored"
	}
}

const throttleNotice = "You are sending messages too fast."

// Encoder turns player actions into envelopes. It must be used from the
// goroutine that owns the store's mutations.
type Encoder struct {
	link    Link
	store   *store.Store
	limiter *rate.Limiter
	log     *zap.Logger
	metrics *metrics.Collector
}

// Option configures an Encoder
type Option func(*Encoder)

// WithChatLimit throttles chat to limit messages per second with the given
// burst. A zero limit disables throttling.
func WithChatLimit(limit float64, burst int) Option {
	return func(e *Encoder) {
		if limit <= 0 {
			e.limiter = nil
			return
		}
		e.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Encoder) { e.log = logging.OrNop(l) }
}

// WithMetrics sets the metrics collector
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Encoder) { e.metrics = m }
}

// New creates an encoder writing to link and echoing into st
func New(link Link, st *store.Store, opts ...Option) *Encoder {
	e := &Encoder{
		link:  link,
		store: st,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Send encodes and transmits one envelope. It returns false without trying
// when the link is not open, and false when encoding or writing fails.
func (e *Encoder) Send(typ string, data any) bool {
	if e.link == nil || !e.link.Open() {
		return false
	}

	frame, err := protocol.Encode(typ, data)
	if err != nil {
		e.log.Error("encode outbound envelope", zap.String("type", typ), zap.Error(err))
		return false
	}

	if err := e.link.WriteFrame(frame); err != nil {
		e.log.Warn("send failed", zap.String("type", typ), zap.Error(err))
		return false
	}
	return true
}

// Chat sends a chat line. When the send fails the line is appended locally
// as our own message.
func (e *Encoder) Chat(text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Ignored
	}

	if e.limiter != nil && !e.limiter.Allow() {
		e.store.AppendSelfChat(text)
		e.store.AppendNotice(throttleNotice)
		return e.record(protocol.TypeChat, Throttled)
	}

	if e.Send(protocol.TypeChat, protocol.ChatIntent{Text: text, From: e.store.Username()}) {
		return e.record(protocol.TypeChat, Sent)
	}
	e.store.AppendSelfChat(text)
	return e.record(protocol.TypeChat, Echoed)
}

// Vote votes against target
func (e *Encoder) Vote(target string) Outcome {
	return e.targeted(protocol.TypeVote, target, "Voted for %s (offline).")
}

// Kill attempts to kill target
func (e *Encoder) Kill(target string) Outcome {
	return e.targeted(protocol.TypeKill, target, "Attempted to kill %s (offline).")
}

// Act is the role action: a killer kills, everyone else votes
func (e *Encoder) Act(target string) Outcome {
	if e.store.Role().IsKiller() {
		return e.Kill(target)
	}
	return e.Vote(target)
}

func (e *Encoder) targeted(typ, target, offline string) Outcome {
	target = strings.TrimSpace(target)
	if target == "" {
		return Ignored
	}

	if e.Send(typ, protocol.TargetIntent{TargetID: target, From: e.store.Username()}) {
		return e.record(typ, Sent)
	}
	e.store.AppendNotice(fmt.Sprintf(offline, target))
	return e.record(typ, Echoed)
}

func (e *Encoder) record(typ string, o Outcome) Outcome {
	e.metrics.Intent(typ, o.String())
	return o
}
