package ws

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logAdapter "github.com/bft-labs/rtfeed/internal/adapters/log"
	"github.com/bft-labs/rtfeed/internal/domain"
)

// eventRecorder turns socket callbacks into strings on a channel.
type eventRecorder struct {
	events chan string
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{events: make(chan string, 32)}
}

func (r *eventRecorder) OnOpen()                    { r.events <- "open" }
func (r *eventRecorder) OnMessage(data []byte)      { r.events <- "message:" + string(data) }
func (r *eventRecorder) OnClose(code int, reason string) {
	r.events <- fmt.Sprintf("close:%d:%s", code, reason)
}
func (r *eventRecorder) OnError(err error) { r.events <- "error:" + err.Error() }

func (r *eventRecorder) next(t *testing.T) string {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for socket event")
		return ""
	}
}

func (r *eventRecorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected socket event %q", ev)
	case <-time.After(wait):
	}
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func echoServer(t *testing.T, serverClosed chan<- error) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				if serverClosed != nil {
					serverClosed <- err
				}
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func newTestDialer() *Dialer {
	return NewDialer(Config{HandshakeTimeout: 2 * time.Second}, logAdapter.NewNoopLogger())
}

func TestDialer_OpenSendReceive(t *testing.T) {
	closed := make(chan error, 1)
	srv := echoServer(t, closed)
	defer srv.Close()

	rec := newEventRecorder()
	sock, err := newTestDialer().Open(wsURL(srv, "/realtime/v1/websocket?apikey=k&vsn=1.0.0"), rec)
	require.NoError(t, err)

	require.Equal(t, "open", rec.next(t))

	require.NoError(t, sock.Send([]byte(`{"event":"heartbeat"}`)))
	assert.Equal(t, `message:{"event":"heartbeat"}`, rec.next(t))

	require.NoError(t, sock.Close())
	require.NoError(t, sock.Close())

	select {
	case err := <-closed:
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not observe close")
	}

	rec.none(t, 100*time.Millisecond)
	assert.ErrorIs(t, sock.Send([]byte("late")), domain.ErrSocketClosed)
}

func TestDialer_RemoteClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(4000, "bye"))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	rec := newEventRecorder()
	_, err := newTestDialer().Open(wsURL(srv, "/"), rec)
	require.NoError(t, err)

	assert.Equal(t, "open", rec.next(t))
	assert.Equal(t, "close:4000:bye", rec.next(t))
}

func TestDialer_HandshakeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	rec := newEventRecorder()
	_, err := newTestDialer().Open(wsURL(srv, "/"), rec)
	require.NoError(t, err)

	ev := rec.next(t)
	assert.True(t, strings.HasPrefix(ev, "error:"), ev)
	assert.Contains(t, ev, "status 401")
}

func TestDialer_AbruptDisconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	rec := newEventRecorder()
	_, err := newTestDialer().Open(wsURL(srv, "/"), rec)
	require.NoError(t, err)

	assert.Equal(t, "open", rec.next(t))
	ev := rec.next(t)
	assert.True(t, strings.HasPrefix(ev, "error:") || strings.HasPrefix(ev, "close:1006"), ev)
}

func TestDialer_InvalidURL(t *testing.T) {
	d := newTestDialer()

	_, err := d.Open("https://example.com/realtime", newEventRecorder())
	assert.Error(t, err)

	_, err = d.Open("://bad", newEventRecorder())
	assert.Error(t, err)
}

func TestSocket_SendQueueFull(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	d := NewDialer(Config{HandshakeTimeout: 5 * time.Second, SendQueueSize: 1}, logAdapter.NewNoopLogger())
	rec := newEventRecorder()
	sock, err := d.Open(wsURL(srv, "/"), rec)
	require.NoError(t, err)

	require.NoError(t, sock.Send([]byte("a")))
	assert.ErrorIs(t, sock.Send([]byte("b")), domain.ErrSendQueueFull)

	require.NoError(t, sock.Close())
	rec.none(t, 100*time.Millisecond)
}
