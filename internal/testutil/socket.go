package testutil

import (
	"sync"

	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// FakeDialer implements ports.Dialer by handing out FakeSockets.
type FakeDialer struct {
	mu      sync.Mutex
	sockets []*FakeSocket
	openErr error
}

// NewFakeDialer creates a dialer whose sockets stay pending until the test
// calls FakeSocket.Accept.
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{}
}

// SetOpenError makes subsequent Open calls fail with err (nil to clear).
func (d *FakeDialer) SetOpenError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openErr = err
}

// Open records the attempt. It never invokes handler callbacks.
func (d *FakeDialer) Open(url string, handler ports.SocketHandler) (ports.Socket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.openErr != nil {
		d.sockets = append(d.sockets, &FakeSocket{URL: url, failed: true})
		return nil, d.openErr
	}

	s := &FakeSocket{URL: url, handler: handler}
	d.sockets = append(d.sockets, s)
	return s, nil
}

// Opens returns the number of Open calls, failed ones included.
func (d *FakeDialer) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sockets)
}

// Socket returns the socket created by the i-th Open call.
func (d *FakeDialer) Socket(i int) *FakeSocket {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sockets[i]
}

// Last returns the most recent socket, or nil.
func (d *FakeDialer) Last() *FakeSocket {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sockets) == 0 {
		return nil
	}
	return d.sockets[len(d.sockets)-1]
}

// SentFrames returns the number of frames sent on all sockets.
func (d *FakeDialer) SentFrames() int {
	d.mu.Lock()
	sockets := append([]*FakeSocket(nil), d.sockets...)
	d.mu.Unlock()

	n := 0
	for _, s := range sockets {
		n += len(s.Sent())
	}
	return n
}

// FakeSocket implements ports.Socket and lets tests drive its handler.
type FakeSocket struct {
	URL string

	handler ports.SocketHandler
	failed  bool

	mu      sync.Mutex
	sent    [][]byte
	closed  bool
	sendErr error
}

// Send records data unless the socket is closed or a send error is set.
func (s *FakeSocket) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSocketClosed
	}
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, append([]byte(nil), data...))
	return nil
}

// Close marks the socket closed.
func (s *FakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SetSendError makes subsequent sends fail with err (nil to clear).
func (s *FakeSocket) SetSendError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

// Sent returns a copy of the frames sent on the socket.
func (s *FakeSocket) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.sent...)
}

// Closed reports whether Close was called.
func (s *FakeSocket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Failed reports whether the Open call for this socket returned an error.
func (s *FakeSocket) Failed() bool {
	return s.failed
}

// Accept simulates the connection being established.
func (s *FakeSocket) Accept() {
	s.handler.OnOpen()
}

// Receive simulates an inbound message.
func (s *FakeSocket) Receive(data []byte) {
	s.handler.OnMessage(data)
}

// RemoteClose simulates the peer closing the connection.
func (s *FakeSocket) RemoteClose(code int, reason string) {
	s.handler.OnClose(code, reason)
}

// Fail simulates a transport error.
func (s *FakeSocket) Fail(err error) {
	s.handler.OnError(err)
}

var _ ports.Dialer = (*FakeDialer)(nil)
