package sink

import (
	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// Chain returns a handler calling each non-nil handler in order.
func Chain(handlers ...ports.ChangeHandler) ports.ChangeHandler {
	var hs []ports.ChangeHandler
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return chain(hs)
}

type chain []ports.ChangeHandler

func (c chain) OnChangeEvent(msg domain.Message) {
	for _, h := range c {
		h.OnChangeEvent(msg)
	}
}

// LogHandler logs every received message.
type LogHandler struct {
	Logger ports.Logger

	// Next is called after logging; may be nil.
	Next ports.ChangeHandler
}

// OnChangeEvent logs msg at info level and passes it on.
func (h *LogHandler) OnChangeEvent(msg domain.Message) {
	h.Logger.Info("received message",
		ports.String("topic", msg.Topic),
		ports.String("event", msg.Event),
		ports.Int("bytes", len(msg.Raw)),
	)
	if h.Next != nil {
		h.Next.OnChangeEvent(msg)
	}
}
