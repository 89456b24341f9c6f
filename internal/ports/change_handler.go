package ports

import "github.com/bft-labs/rtfeed/internal/domain"

// ChangeHandler receives well-formed inbound messages from a channel client.
// It is called outside the client's lock, one message at a time per socket.
type ChangeHandler interface {
	OnChangeEvent(msg domain.Message)
}

// ChangeHandlerFunc adapts a function to ChangeHandler.
type ChangeHandlerFunc func(msg domain.Message)

// OnChangeEvent calls f(msg).
func (f ChangeHandlerFunc) OnChangeEvent(msg domain.Message) {
	f(msg)
}
