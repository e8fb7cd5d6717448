package conn

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"crewlink/internal/game"
	"crewlink/internal/intent"
	"crewlink/internal/logging"
	"crewlink/internal/metrics"
	"crewlink/internal/protocol"
	"crewlink/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StateListener observes connection state transitions
type StateListener func(State)

// Options configures a Manager
type Options struct {
	// ServerURL is the http(s) base the game is served from
	ServerURL *url.URL
	Dialer    Dialer
	Store     *store.Store
	Logger    *zap.Logger
	Metrics   *metrics.Collector

	// ChatRateLimit and ChatRateBurst throttle outbound chat; zero disables
	ChatRateLimit float64
	ChatRateBurst int
}

// Manager owns the connection lifecycle. A single loop goroutine performs
// every store mutation: inbound frames, lifecycle notices and outbound
// intents are all commands on its inbox, handled in arrival order.
type Manager struct {
	base    *url.URL
	dialer  Dialer
	store   *store.Store
	intents *intent.Encoder
	log     *zap.Logger
	metrics *metrics.Collector

	inbox chan command
	done  chan struct{}
	state atomic.Int32

	listenersMu sync.RWMutex
	listeners   []StateListener

	// loop-owned
	transport Transport
	session   uint64
	sessionID string
}

type command interface{ isCommand() }

type joinCmd struct {
	ctx   context.Context
	name  string
	room  game.Room
	reply chan error
}

type leaveCmd struct {
	reply chan struct{}
}

type intentCmd struct {
	do    func(*intent.Encoder) intent.Outcome
	reply chan intent.Outcome
}

type frameEvent struct {
	session uint64
	raw     string
}

type closedEvent struct {
	session uint64
	err     error
}

func (joinCmd) isCommand()     {}
func (leaveCmd) isCommand()    {}
func (intentCmd) isCommand()   {}
func (frameEvent) isCommand()  {}
func (closedEvent) isCommand() {}

// NewManager creates a manager and starts its loop. The loop stops, closing
// any open transport, when ctx is cancelled.
func NewManager(ctx context.Context, opts Options) *Manager {
	st := opts.Store
	if st == nil {
		st = store.New()
	}

	m := &Manager{
		base:    opts.ServerURL,
		dialer:  opts.Dialer,
		store:   st,
		log:     logging.OrNop(opts.Logger),
		metrics: opts.Metrics,
		inbox:   make(chan command, 64),
		done:    make(chan struct{}),
	}
	if m.dialer == nil && m.base != nil {
		m.dialer = NewWSDialer(Origin(m.base), 0, 0, 0)
	}
	m.intents = intent.New(link{m}, st,
		intent.WithLogger(m.log),
		intent.WithMetrics(m.metrics),
		intent.WithChatLimit(opts.ChatRateLimit, opts.ChatRateBurst),
	)
	m.metrics.ConnectionState(int(Disconnected))

	go m.loop(ctx)
	return m
}

// Store returns the state store fed by this manager
func (m *Manager) Store() *store.Store { return m.store }

// State returns the current connection state
func (m *Manager) State() State { return State(m.state.Load()) }

// Done is closed once the loop has stopped
func (m *Manager) Done() <-chan struct{} { return m.done }

// OnStateChange registers a listener. Listeners run on the manager loop and
// must not call back into the manager.
func (m *Manager) OnStateChange(l StateListener) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Join starts a session for name in room. It is accepted only when no
// session is connecting or open. A dial failure leaves the manager
// Disconnected and is returned wrapped.
func (m *Manager) Join(ctx context.Context, name string, room game.Room) error {
	reply := make(chan error, 1)
	if err := m.submit(ctx, joinCmd{ctx: ctx, name: name, room: room, reply: reply}); err != nil {
		return err
	}
	return m.await(ctx, reply)
}

// Leave closes the current session, if any
func (m *Manager) Leave(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	if err := m.submit(ctx, leaveCmd{reply: reply}); err != nil {
		return err
	}
	select {
	case <-reply:
		return nil
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Chat sends a chat line, echoing it locally when offline
func (m *Manager) Chat(ctx context.Context, text string) (intent.Outcome, error) {
	return m.do(ctx, func(e *intent.Encoder) intent.Outcome { return e.Chat(text) })
}

// Vote votes against target
func (m *Manager) Vote(ctx context.Context, target string) (intent.Outcome, error) {
	return m.do(ctx, func(e *intent.Encoder) intent.Outcome { return e.Vote(target) })
}

// Kill attempts to kill target
func (m *Manager) Kill(ctx context.Context, target string) (intent.Outcome, error) {
	return m.do(ctx, func(e *intent.Encoder) intent.Outcome { return e.Kill(target) })
}

// Act performs the role action on target
func (m *Manager) Act(ctx context.Context, target string) (intent.Outcome, error) {
	return m.do(ctx, func(e *intent.Encoder) intent.Outcome { return e.Act(target) })
}

func (m *Manager) do(ctx context.Context, fn func(*intent.Encoder) intent.Outcome) (intent.Outcome, error) {
	reply := make(chan intent.Outcome, 1)
	if err := m.submit(ctx, intentCmd{do: fn, reply: reply}); err != nil {
		return intent.Ignored, err
	}
	select {
	case o := <-reply:
		return o, nil
	case <-m.done:
		return intent.Ignored, ErrManagerStopped
	case <-ctx.Done():
		return intent.Ignored, ctx.Err()
	}
}

func (m *Manager) submit(ctx context.Context, c command) error {
	select {
	case m.inbox <- c:
		return nil
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) await(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			m.endSession()
			return

		case c := <-m.inbox:
			switch cmd := c.(type) {
			case joinCmd:
				cmd.reply <- m.handleJoin(cmd)
			case leaveCmd:
				m.handleLeave()
				cmd.reply <- struct{}{}
			case intentCmd:
				cmd.reply <- cmd.do(m.intents)
			case frameEvent:
				m.handleFrame(cmd)
			case closedEvent:
				m.handleClosed(cmd)
			}
		}
	}
}

func (m *Manager) handleJoin(cmd joinCmd) error {
	if s := m.State(); s == Connecting || s == Open {
		return ErrAlreadyJoined
	}

	name, err := game.NormalizeName(cmd.name)
	if err != nil {
		return err
	}
	room := cmd.room
	room.Code = strings.TrimSpace(room.Code)
	if room.Code == "" {
		return game.ErrRoomRequired
	}

	m.store.Join(name, room)

	target, err := Target(m.base, room.Code, name)
	if err == nil && m.dialer == nil {
		err = fmt.Errorf("no dialer configured")
	}
	if err != nil {
		m.log.Error("build connection target", zap.Error(err))
		m.metrics.Session(metrics.SessionFailed)
		m.store.AppendNotice(noticeConnectFailed)
		m.setState(Disconnected)
		return fmt.Errorf("connect: %w", err)
	}

	m.setState(Connecting)

	sessionID := uuid.NewString()
	log := m.log.With(zap.String("session", sessionID), zap.String("room", room.Code))
	log.Info("connecting", zap.String("target", target))

	t, err := m.dialer.Dial(cmd.ctx, target)
	if err != nil {
		log.Warn("connect failed", zap.Error(err))
		m.metrics.Session(metrics.SessionFailed)
		m.store.AppendNotice(noticeConnectFailed)
		m.setState(Disconnected)
		return fmt.Errorf("connect to %s: %w", target, err)
	}

	m.session++
	m.sessionID = sessionID
	m.transport = t
	m.metrics.Session(metrics.SessionOpened)
	m.setState(Open)
	log.Info("connected")

	go m.read(m.session, t)
	return nil
}

func (m *Manager) handleLeave() {
	if m.transport == nil {
		return
	}
	m.log.Info("leaving", zap.String("session", m.sessionID))
	m.endSession()
}

func (m *Manager) handleFrame(ev frameEvent) {
	if ev.session != m.session || m.State() != Open {
		return
	}

	msg := protocol.Decode(ev.raw)
	switch msg.(type) {
	case protocol.PlainText:
		m.metrics.FrameReceived(metrics.FramePlainText)
	case protocol.Unknown:
		m.metrics.FrameReceived(metrics.FrameUnknown)
		m.log.Debug("unknown event", zap.String("session", m.sessionID), zap.String("frame", ev.raw))
	default:
		m.metrics.FrameReceived(metrics.FrameEnvelope)
	}

	m.store.Apply(msg)
}

func (m *Manager) handleClosed(ev closedEvent) {
	if ev.session != m.session || m.transport == nil {
		return
	}

	log := m.log.With(zap.String("session", m.sessionID))
	if ev.err == nil || isNormalClose(ev.err) {
		log.Info("connection closed")
	} else {
		log.Warn("connection lost", zap.Error(ev.err))
	}

	m.endSession()
}

// endSession closes the current transport, if any. The reader's closedEvent
// that follows is ignored since no transport is left for its session.
func (m *Manager) endSession() {
	if m.transport == nil {
		return
	}
	if err := m.transport.Close(); err != nil {
		m.log.Debug("close transport", zap.String("session", m.sessionID), zap.Error(err))
	}
	m.transport = nil
	m.metrics.Session(metrics.SessionClosed)
	m.store.AppendNotice(noticeDisconnected)
	m.setState(Closed)
}

// read forwards frames from t to the loop in order, then reports the close
func (m *Manager) read(session uint64, t Transport) {
	for {
		raw, err := t.ReadFrame()
		if err != nil {
			m.post(closedEvent{session: session, err: err})
			return
		}
		if !m.post(frameEvent{session: session, raw: raw}) {
			return
		}
	}
}

func (m *Manager) post(c command) bool {
	select {
	case m.inbox <- c:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) setState(s State) {
	if State(m.state.Swap(int32(s))) == s {
		return
	}
	m.metrics.ConnectionState(int(s))

	m.listenersMu.RLock()
	ls := append([]StateListener(nil), m.listeners...)
	m.listenersMu.RUnlock()
	for _, l := range ls {
		l(s)
	}
}

// link adapts the manager's current transport to intent.Link. It is only
// used from the loop goroutine.
type link struct{ m *Manager }

func (l link) Open() bool {
	return l.m.State() == Open && l.m.transport != nil
}

func (l link) WriteFrame(frame string) error {
	if l.m.transport == nil {
		return fmt.Errorf("no transport")
	}
	return l.m.transport.WriteFrame(frame)
}
