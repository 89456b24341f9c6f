package realtime

import "github.com/bft-labs/rtfeed/internal/domain"

// State is the connection state of a Feed.
type State = domain.State

// Connection states.
const (
	StateIdle          = domain.StateIdle
	StateConnecting    = domain.StateConnecting
	StateJoined        = domain.StateJoined
	StateAwaitingRetry = domain.StateAwaitingRetry
	StateClosing       = domain.StateClosing
)
