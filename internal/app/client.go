package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// Config contains the timing configuration of a channel client.
type Config struct {
	// HeartbeatInterval is the period of heartbeat frames while joined.
	HeartbeatInterval time.Duration

	// ReconnectDelay is the delay before reconnecting after a close or error.
	ReconnectDelay time.Duration

	// ReconnectMaxDelay caps the reconnect delay. When equal to ReconnectDelay
	// (the default) the delay is fixed.
	ReconnectMaxDelay time.Duration
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.ReconnectMaxDelay < c.ReconnectDelay {
		c.ReconnectMaxDelay = c.ReconnectDelay
	}
}

// timerHandle is an owned timer. Callbacks carrying a token that no longer
// matches the owned handle are ignored.
type timerHandle struct {
	timer ports.Timer
	token uint64
}

// Client maintains one channel subscription against one backend and
// reconnects until stopped.
//
// Socket and timer callbacks are fed as events into a single transition
// function serialized by mu.
type Client struct {
	sub      domain.Subscription
	endpoint domain.Endpoint
	config   Config

	dialer  ports.Dialer
	sched   ports.Scheduler
	handler ports.ChangeHandler
	logger  ports.Logger
	emitter EventEmitter

	mu        sync.Mutex
	state     domain.State
	socket    ports.Socket
	gen       uint64
	tokens    uint64
	heartbeat *timerHandle
	retry     *timerHandle
	backoff   *backoff
	changes   []stateChange
}

// NewClient creates a client in StateIdle. It performs no network activity
// until Start is called. handler and emitter may be nil.
func NewClient(
	sub domain.Subscription,
	endpoint domain.Endpoint,
	config Config,
	dialer ports.Dialer,
	sched ports.Scheduler,
	handler ports.ChangeHandler,
	logger ports.Logger,
	emitter EventEmitter,
) *Client {
	config.SetDefaults()
	return &Client{
		sub:      sub,
		endpoint: endpoint,
		config:   config,
		dialer:   dialer,
		sched:    sched,
		handler:  handler,
		logger:   logger,
		emitter:  emitter,
		state:    domain.StateIdle,
		backoff:  newBackoff(config.ReconnectDelay, config.ReconnectMaxDelay),
	}
}

// Start opens a connection if the client is idle. It is a no-op while the
// client is connecting, joined or awaiting a retry.
func (c *Client) Start() {
	c.dispatch(event{kind: evStart})
}

// Stop cancels pending timers, closes the socket and returns to StateIdle.
// No timer callback has any effect after Stop returns. Safe from any state.
func (c *Client) Stop() {
	c.dispatch(event{kind: evStop})
}

// State returns the current connection state.
func (c *Client) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscription returns the subscription the client joins.
func (c *Client) Subscription() domain.Subscription {
	return c.sub
}

// dispatch runs one event through the state machine. Notifications and
// message forwarding happen after the lock is released.
func (c *Client) dispatch(ev event) {
	c.mu.Lock()
	msg, forward := c.transition(ev)
	changes := c.changes
	c.changes = nil
	c.mu.Unlock()

	if c.emitter != nil {
		for _, ch := range changes {
			c.emitter.OnStateChange(ch.previous, ch.current, ch.reason)
		}
	}

	if forward && c.handler != nil {
		c.handler.OnChangeEvent(msg)
	}
}

// transition is the single state transition function. Must hold c.mu.
func (c *Client) transition(ev event) (domain.Message, bool) {
	switch ev.kind {
	case evStart:
		if c.state != domain.StateIdle {
			c.logger.Debug("start ignored", ports.String("state", c.state.String()))
			return domain.Message{}, false
		}
		c.backoff.Reset()
		c.connect("Start() called")

	case evStop:
		c.stop()

	case evOpen:
		if !c.isCurrent(ev) || c.state != domain.StateConnecting {
			return domain.Message{}, false
		}
		c.onOpen()

	case evMessage:
		if !c.isCurrent(ev) {
			return domain.Message{}, false
		}
		return c.onMessage(ev.data)

	case evClose:
		if !c.isCurrent(ev) {
			return domain.Message{}, false
		}
		c.logger.Warn("socket closed",
			ports.Int("code", ev.code),
			ports.String("reason", ev.reason),
			ports.Uint64("gen", ev.gen),
		)
		c.fail(fmt.Sprintf("socket closed (%d)", ev.code))

	case evError:
		if !c.isCurrent(ev) {
			return domain.Message{}, false
		}
		c.logger.Error("socket error", ports.Err(ev.err), ports.Uint64("gen", ev.gen))
		c.fail("socket error")

	case evHeartbeat:
		if c.heartbeat == nil || c.heartbeat.token != ev.token || c.state != domain.StateJoined {
			return domain.Message{}, false
		}
		if err := c.send(domain.NewHeartbeatFrame()); err != nil {
			c.logger.Debug("heartbeat skipped", ports.Err(err))
		}

	case evRetry:
		if c.retry == nil || c.retry.token != ev.token {
			return domain.Message{}, false
		}
		c.retry = nil
		c.connect("reconnect timer fired")
	}

	return domain.Message{}, false
}

// isCurrent reports whether a socket event belongs to the live socket.
func (c *Client) isCurrent(ev event) bool {
	return c.socket != nil && ev.gen == c.gen
}

func (c *Client) connect(reason string) {
	c.gen++
	gen := c.gen
	c.setState(domain.StateConnecting, reason)

	sock, err := c.dialer.Open(c.endpoint.URL(), &socketEvents{client: c, gen: gen})
	if err != nil {
		c.logger.Error("open socket failed", ports.Err(err), ports.String("host", c.endpoint.Host))
		c.scheduleRetry("open failed")
		return
	}
	c.socket = sock

	c.logger.Info("connecting",
		ports.String("host", c.endpoint.Host),
		ports.String("topic", c.sub.Topic()),
		ports.Uint64("gen", gen),
	)
}

func (c *Client) onOpen() {
	if err := c.send(domain.NewJoinFrame(c.sub)); err != nil {
		c.logger.Error("send join failed", ports.Err(err))
		c.fail("join send failed")
		return
	}
	c.setState(domain.StateJoined, "joined "+c.sub.Topic())
	c.backoff.Reset()

	token := c.nextToken()
	c.heartbeat = &timerHandle{
		token: token,
		timer: c.sched.Every(c.config.HeartbeatInterval, func() {
			c.dispatch(event{kind: evHeartbeat, token: token})
		}),
	}
}

func (c *Client) onMessage(data []byte) (domain.Message, bool) {
	msg, err := domain.DecodeMessage(data)
	if err != nil {
		c.logger.Warn("protocol error, dropping frame",
			ports.Err(err),
			ports.Int("bytes", len(data)),
		)
		return domain.Message{}, false
	}

	if msg.Topic == c.sub.Topic() && msg.Ref == domain.JoinRef && msg.ReplyStatus() == "error" {
		c.logger.Warn("channel join rejected",
			ports.String("topic", msg.Topic),
			ports.String("response", string(msg.Payload)),
		)
	}

	return msg, true
}

// fail handles a transport failure: heartbeat first, then socket, then retry.
func (c *Client) fail(reason string) {
	c.stopHeartbeat()
	c.closeSocket()
	c.scheduleRetry(reason)
}

// scheduleRetry arms the reconnect timer unless one is already pending.
func (c *Client) scheduleRetry(reason string) {
	if c.retry != nil {
		c.logger.Debug("reconnect already scheduled", ports.String("reason", reason))
		return
	}

	delay := c.backoff.Next()
	token := c.nextToken()
	c.retry = &timerHandle{
		token: token,
		timer: c.sched.AfterFunc(delay, func() {
			c.dispatch(event{kind: evRetry, token: token})
		}),
	}
	c.setState(domain.StateAwaitingRetry, reason)

	c.logger.Info("reconnect scheduled", ports.Duration("delay", delay))
}

func (c *Client) stop() {
	if c.state == domain.StateIdle && c.socket == nil && c.retry == nil && c.heartbeat == nil {
		return
	}

	c.stopHeartbeat()
	if c.retry != nil {
		c.retry.timer.Stop()
		c.retry = nil
	}
	if c.socket != nil {
		c.setState(domain.StateClosing, "Stop() called")
		c.closeSocket()
	}
	c.setState(domain.StateIdle, "Stop() called")
}

func (c *Client) stopHeartbeat() {
	if c.heartbeat == nil {
		return
	}
	c.heartbeat.timer.Stop()
	c.heartbeat = nil
}

func (c *Client) closeSocket() {
	if c.socket == nil {
		return
	}
	if err := c.socket.Close(); err != nil {
		c.logger.Debug("close socket", ports.Err(err))
	}
	c.socket = nil
}

func (c *Client) send(f domain.Frame) error {
	if c.socket == nil {
		return domain.ErrNotConnected
	}
	b, err := f.Encode()
	if err != nil {
		return err
	}
	return c.socket.Send(b)
}

func (c *Client) nextToken() uint64 {
	c.tokens++
	return c.tokens
}

func (c *Client) setState(s domain.State, reason string) {
	if s == c.state {
		return
	}
	c.changes = append(c.changes, stateChange{previous: c.state, current: s, reason: reason})

	c.logger.Info("state transition",
		ports.String("from", c.state.String()),
		ports.String("to", s.String()),
		ports.String("reason", reason),
	)
	c.state = s
}
