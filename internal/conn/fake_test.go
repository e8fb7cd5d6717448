package conn

import (
	"context"
	"errors"
	"io"
	"sync"
)

// fakeTransport delivers frames pushed by the test. Closing frames simulates
// the server hanging up.
type fakeTransport struct {
	frames chan string
	closed chan struct{}
	once   sync.Once

	mu       sync.Mutex
	writes   []string
	writeErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		frames: make(chan string, 32),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) ReadFrame() (string, error) {
	select {
	case raw, ok := <-f.frames:
		if !ok {
			return "", io.EOF
		}
		return raw, nil
	case <-f.closed:
		return "", errors.New("use of closed connection")
	}
}

func (f *fakeTransport) WriteFrame(frame string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, frame)
	return nil
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeTransport) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out queued transports, or fails with err
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	err        error
	targets    []string
}

func (d *fakeDialer) Dial(_ context.Context, target string) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.targets = append(d.targets, target)
	if d.err != nil {
		return nil, d.err
	}
	if len(d.transports) == 0 {
		return nil, errors.New("no transport queued")
	}
	t := d.transports[0]
	d.transports = d.transports[1:]
	return t, nil
}
