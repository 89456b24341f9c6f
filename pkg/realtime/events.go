package realtime

import "github.com/bft-labs/rtfeed/internal/domain"

// StateChangeEvent describes a connection state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// MessageEvent describes a message delivered to the change handler.
type MessageEvent struct {
	Topic string
	Event string
	Bytes int

	// Count is the number of messages delivered since New.
	Count uint64
}

// EventHandler receives feed events.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnMessage(event MessageEvent)
}

// BaseEventHandler implements EventHandler with no-ops.
// Embed it to implement only the methods you need.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(StateChangeEvent) {}

// OnMessage does nothing.
func (BaseEventHandler) OnMessage(MessageEvent) {}

// eventEmitterWrapper adapts EventHandler to the client's emitter.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current domain.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}
