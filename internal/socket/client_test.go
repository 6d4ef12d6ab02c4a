package socket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

type imServer struct {
	*httptest.Server
	tokens   chan string
	received chan OutboundMessage
	push     chan []byte
	kick     chan struct{}
}

func newIMServer(t *testing.T) *imServer {
	t.Helper()
	s := &imServer{
		tokens:   make(chan string, 4),
		received: make(chan OutboundMessage, 4),
		push:     make(chan []byte, 4),
		kick:     make(chan struct{}),
	}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/ws" {
			http.NotFound(w, r)
			return
		}
		s.tokens <- r.URL.Query().Get("token")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var m OutboundMessage
				if json.Unmarshal(data, &m) == nil {
					s.received <- m
				}
			}
		}()

		for {
			select {
			case data := <-s.push:
				_ = conn.WriteMessage(websocket.TextMessage, data)
			case <-s.kick:
				return
			case <-gone:
				return
			}
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *imServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestConnect_SendsTokenAndReceivesMessages(t *testing.T) {
	srv := newIMServer(t)
	c := New(srv.wsURL(), apiclient.TokenFunc(func() string { return "a b" }))
	defer c.Reset()

	got := make(chan api.ChatMessage, 2)
	c.OnMessage(func(m api.ChatMessage) { got <- m })

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, "a b", <-srv.tokens)
	assert.True(t, c.IsConnected())

	srv.push <- []byte("not json")
	srv.push <- []byte(`{"sessionId":5,"userId":"u1","content":"hi","type":"text","time":"2024-01-01T10:00:00Z"}`)

	select {
	case m := <-got:
		assert.Equal(t, int64(5), int64(m.SessionID))
		assert.Equal(t, "hi", m.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestSend_WritesFrame(t *testing.T) {
	srv := newIMServer(t)
	c := New(srv.wsURL(), apiclient.TokenFunc(func() string { return "t" }))
	defer c.Reset()

	assert.ErrorIs(t, c.Send(OutboundMessage{SessionID: 1, Content: "x"}), ErrNotConnected)

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Send(OutboundMessage{SessionID: 7, Content: "hello", Type: api.MessageText, ReceiverID: "u9"}))

	select {
	case m := <-srv.received:
		assert.Equal(t, int64(7), m.SessionID)
		assert.Equal(t, "u9", m.ReceiverID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestConnect_IdempotentRefiresConnectHandlers(t *testing.T) {
	srv := newIMServer(t)
	c := New(srv.wsURL(), apiclient.TokenFunc(func() string { return "t" }))
	defer c.Reset()

	var connects int32
	c.OnConnect(func() { atomic.AddInt32(&connects, 1) })

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Connect(context.Background()))

	assert.Equal(t, int32(2), atomic.LoadInt32(&connects))
	assert.Len(t, srv.tokens, 1, "second connect must not dial again")
}

func TestServerClose_RunsDisconnectHandlers(t *testing.T) {
	srv := newIMServer(t)
	c := New(srv.wsURL(), apiclient.TokenFunc(func() string { return "t" }))
	defer c.Reset()

	down := make(chan struct{}, 1)
	c.OnDisconnect(func() { down <- struct{}{} })
	require.NoError(t, c.Connect(context.Background()))

	close(srv.kick)
	select {
	case <-down:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for disconnect")
	}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.Send(OutboundMessage{}), ErrNotConnected)
}

func TestUnsubscribeAndReset(t *testing.T) {
	srv := newIMServer(t)
	c := New(srv.wsURL(), apiclient.TokenFunc(func() string { return "t" }))

	var connects int32
	unsub := c.OnConnect(func() { atomic.AddInt32(&connects, 1) })
	unsub()

	var downs int32
	c.OnDisconnect(func() { atomic.AddInt32(&downs, 1) })

	require.NoError(t, c.Connect(context.Background()))
	c.Reset()

	assert.Equal(t, int32(0), atomic.LoadInt32(&connects))
	assert.Equal(t, int32(0), atomic.LoadInt32(&downs), "reset drops handlers before closing")
	assert.False(t, c.IsConnected())
}
