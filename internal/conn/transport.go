package conn

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is one open persistent connection carrying text frames
type Transport interface {
	// ReadFrame blocks for the next frame. Any error ends the session.
	ReadFrame() (string, error)
	WriteFrame(frame string) error
	Close() error
}

// Dialer opens transports
type Dialer interface {
	Dial(ctx context.Context, target string) (Transport, error)
}

// WSDialer dials gorilla websocket connections
type WSDialer struct {
	Dialer       *websocket.Dialer
	Origin       string
	ReadLimit    int64
	WriteTimeout time.Duration
}

// NewWSDialer returns a dialer with the given handshake timeout
func NewWSDialer(origin string, handshakeTimeout, writeTimeout time.Duration, readLimit int64) *WSDialer {
	return &WSDialer{
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		Origin:       origin,
		ReadLimit:    readLimit,
		WriteTimeout: writeTimeout,
	}
}

// Dial implements Dialer
func (d *WSDialer) Dial(ctx context.Context, target string) (Transport, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	if d.Origin != "" {
		header.Set("Origin", d.Origin)
	}

	c, resp, err := dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	if d.ReadLimit > 0 {
		c.SetReadLimit(d.ReadLimit)
	}
	return &wsTransport{conn: c, writeTimeout: d.WriteTimeout}, nil
}

type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	writeMu      sync.Mutex
	closeOnce    sync.Once
	closeErr     error
}

func (t *wsTransport) ReadFrame() (string, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (t *wsTransport) WriteFrame(frame string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

// Close sends a normal closure frame and closes the socket
func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		t.writeMu.Unlock()
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

// isNormalClose reports whether err is the peer closing cleanly
func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
