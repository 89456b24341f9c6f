// Package ws implements the socket ports on gorilla/websocket.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// Default transport settings.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultSendQueueSize    = 64
	DefaultReadLimit        = 1 << 20
)

// Config contains transport settings.
type Config struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	SendQueueSize    int
	ReadLimit        int64
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = DefaultSendQueueSize
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = DefaultReadLimit
	}
}

// Dialer implements ports.Dialer. Each Open dials on its own goroutine.
type Dialer struct {
	cfg    Config
	dialer *websocket.Dialer
	logger ports.Logger
}

// NewDialer creates a websocket dialer.
func NewDialer(cfg Config, logger ports.Logger) *Dialer {
	cfg.SetDefaults()
	return &Dialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger: logger,
	}
}

// Open validates rawURL and starts connecting in the background.
// Returns an error only if the URL cannot be dialed at all.
func (d *Dialer) Open(rawURL string, handler ports.SocketHandler) (ports.Socket, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse socket url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported socket scheme %q", u.Scheme)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &socket{
		id:       uuid.NewString(),
		url:      rawURL,
		host:     u.Host,
		cfg:      d.cfg,
		handler:  handler,
		logger:   d.logger,
		send:     make(chan []byte, d.cfg.SendQueueSize),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
		cancel:   cancel,
	}

	go s.run(ctx, d.dialer)
	return s, nil
}

// socket is one gorilla connection with a read pump on the dialing
// goroutine and a write pump draining the send queue.
type socket struct {
	id      string
	url     string
	host    string
	cfg     Config
	handler ports.SocketHandler
	logger  ports.Logger

	send     chan []byte
	done     chan struct{}
	readDone chan struct{}
	cancel   context.CancelFunc

	closeOnce sync.Once

	mu       sync.Mutex
	conn     *websocket.Conn
	closed   bool
	writeErr error
}

func (s *socket) run(ctx context.Context, dialer *websocket.Dialer) {
	defer s.cancel()

	s.logger.Debug("dialing", ports.String("conn_id", s.id), ports.String("host", s.host))

	dctx, cancel := context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
	conn, resp, err := dialer.DialContext(dctx, s.url, nil)
	cancel()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("dial %s: %w (status %d)", s.host, err, resp.StatusCode)
		} else {
			err = fmt.Errorf("dial %s: %w", s.host, err)
		}
		s.deliver(func(h ports.SocketHandler) { h.OnError(err) })
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	conn.SetReadLimit(s.cfg.ReadLimit)
	s.logger.Debug("socket open", ports.String("conn_id", s.id))

	s.deliver(func(h ports.SocketHandler) { h.OnOpen() })

	go s.writePump(conn)
	s.readPump(conn)
}

func (s *socket) readPump(conn *websocket.Conn) {
	defer close(s.readDone)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			s.reportReadError(err)
			return
		}
		s.deliver(func(h ports.SocketHandler) { h.OnMessage(data) })
	}
}

func (s *socket) reportReadError(err error) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		s.logger.Debug("socket closed by peer",
			ports.String("conn_id", s.id),
			ports.Int("code", ce.Code),
		)
		s.deliver(func(h ports.SocketHandler) { h.OnClose(ce.Code, ce.Text) })
		return
	}

	s.mu.Lock()
	if s.writeErr != nil {
		err = s.writeErr
	}
	s.mu.Unlock()

	s.deliver(func(h ports.SocketHandler) { h.OnError(fmt.Errorf("read: %w", err)) })
}

func (s *socket) writePump(conn *websocket.Conn) {
	for {
		select {
		case msg := <-s.send:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.mu.Lock()
				s.writeErr = fmt.Errorf("write: %w", err)
				s.mu.Unlock()
				// Unblocks the read pump, which reports the failure.
				_ = conn.Close()
				return
			}

		case <-s.done:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.Close()
			return

		case <-s.readDone:
			return
		}
	}
}

// Send queues data for the write pump without blocking.
func (s *socket) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSocketClosed
	}
	select {
	case s.send <- data:
		return nil
	default:
		return domain.ErrSendQueueFull
	}
}

// Close aborts a pending dial or hands the close handshake to the write pump.
func (s *socket) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		close(s.done)
		s.logger.Debug("socket close requested", ports.String("conn_id", s.id))
	})
	return nil
}

// deliver invokes f unless the socket was closed locally.
func (s *socket) deliver(f func(ports.SocketHandler)) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if !closed {
		f(s.handler)
	}
}

var _ ports.Dialer = (*Dialer)(nil)
