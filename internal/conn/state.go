package conn

import "errors"

// State is the connection lifecycle state
type State int32

const (
	Disconnected State = iota
	Connecting
	Open
	// Closed is terminal for a session. Only a fresh Join leaves it.
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyJoined  = errors.New("a session is already connecting or open")
	ErrManagerStopped = errors.New("connection manager stopped")
)

// Notices appended to the chat log on lifecycle events
const (
	noticeDisconnected  = "Disconnected from server."
	noticeConnectFailed = "Could not connect to server."
)
