package domain

// State is the connection state of a channel client.
type State int

const (
	// StateIdle is both the initial state and the state reached by an explicit stop.
	StateIdle State = iota

	// StateConnecting means a socket open attempt is in flight.
	StateConnecting

	// StateJoined means the socket is open, the join frame was sent and heartbeats run.
	StateJoined

	// StateAwaitingRetry means the connection failed and a reconnect timer is pending.
	StateAwaitingRetry

	// StateClosing means the client is tearing down its socket on stop.
	StateClosing
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateJoined:
		return "Joined"
	case StateAwaitingRetry:
		return "AwaitingRetry"
	case StateClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// Active reports whether the client is maintaining (or recovering) a connection.
func (s State) Active() bool {
	return s == StateConnecting || s == StateJoined || s == StateAwaitingRetry
}
