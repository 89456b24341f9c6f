package ports

// SocketHandler receives lifecycle callbacks from a Socket.
// Callbacks for a single socket are delivered sequentially.
type SocketHandler interface {
	// OnOpen is called once the connection is established.
	OnOpen()

	// OnMessage is called for every inbound text or binary message.
	OnMessage(data []byte)

	// OnClose is called when the peer closes the connection.
	OnClose(code int, reason string)

	// OnError is called when dialing, reading or writing fails.
	OnError(err error)
}

// Socket is one websocket connection.
type Socket interface {
	// Send queues a message for delivery without blocking.
	// Returns an error if the socket is closed or cannot accept the message.
	Send(data []byte) error

	// Close tears down the connection without blocking. It is safe to call
	// more than once. A callback already in flight may still arrive.
	Close() error
}

// Dialer opens sockets.
type Dialer interface {
	// Open starts connecting to url and returns immediately.
	// Implementations must not invoke handler callbacks before Open returns.
	Open(url string, handler SocketHandler) (Socket, error)
}
