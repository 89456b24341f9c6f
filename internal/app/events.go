package app

import "github.com/bft-labs/rtfeed/internal/domain"

// eventKind enumerates the inputs of the client state machine.
type eventKind int

const (
	evStart eventKind = iota
	evStop
	evOpen
	evMessage
	evClose
	evError
	evHeartbeat
	evRetry
)

func (k eventKind) String() string {
	switch k {
	case evStart:
		return "start"
	case evStop:
		return "stop"
	case evOpen:
		return "open"
	case evMessage:
		return "message"
	case evClose:
		return "close"
	case evError:
		return "error"
	case evHeartbeat:
		return "heartbeat"
	case evRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// event is fed into Client.dispatch. gen identifies the socket a socket event
// came from; token identifies the timer a timer event came from.
type event struct {
	kind   eventKind
	gen    uint64
	token  uint64
	data   []byte
	code   int
	reason string
	err    error
}

// EventEmitter is called when the client changes state.
type EventEmitter interface {
	OnStateChange(previous, current domain.State, reason string)
}

// stateChange is a pending notification collected under the lock.
type stateChange struct {
	previous domain.State
	current  domain.State
	reason   string
}

// socketEvents binds a socket's callbacks to one connection generation.
type socketEvents struct {
	client *Client
	gen    uint64
}

func (s *socketEvents) OnOpen() {
	s.client.dispatch(event{kind: evOpen, gen: s.gen})
}

func (s *socketEvents) OnMessage(data []byte) {
	s.client.dispatch(event{kind: evMessage, gen: s.gen, data: data})
}

func (s *socketEvents) OnClose(code int, reason string) {
	s.client.dispatch(event{kind: evClose, gen: s.gen, code: code, reason: reason})
}

func (s *socketEvents) OnError(err error) {
	s.client.dispatch(event{kind: evError, gen: s.gen, err: err})
}
