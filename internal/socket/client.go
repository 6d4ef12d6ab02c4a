// Package socket is the IM push connection: one websocket per logged-in
// operator, manual reconnect only.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/logger"
)

var (
	ErrNotConnected = errors.New("socket: not connected")
	ErrSendBacklog  = errors.New("socket: send buffer full")
)

const sendBuffer = 64

// OutboundMessage is the frame the console writes.
type OutboundMessage struct {
	SessionID  int64           `json:"sessionId"`
	Content    string          `json:"content"`
	Type       api.MessageType `json:"type"`
	ReceiverID string          `json:"receiverId"`
}

type (
	MessageHandler    func(api.ChatMessage)
	ConnectHandler    func()
	DisconnectHandler func()
)

// ConnLike is the part of *websocket.Conn the pumps use.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

type Dialer func(ctx context.Context, rawURL string) (ConnLike, error)

func defaultDialer(ctx context.Context, rawURL string) (ConnLike, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type Client struct {
	baseURL string
	tokens  apiclient.TokenSource
	dial    Dialer

	mu         sync.Mutex
	conn       ConnLike
	send       chan []byte
	connecting bool
	gen        uint64

	nextID       uint64
	onMessage    map[uint64]MessageHandler
	onConnect    map[uint64]ConnectHandler
	onDisconnect map[uint64]DisconnectHandler
}

type Option func(*Client)

func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

func New(baseURL string, tokens apiclient.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
		dial:         defaultDialer,
		onMessage:    make(map[uint64]MessageHandler),
		onConnect:    make(map[uint64]ConnectHandler),
		onDisconnect: make(map[uint64]DisconnectHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) url() string {
	return c.baseURL + "/chat/ws?token=" + url.QueryEscape(c.tokens.Token())
}

// Connect opens the socket. When already open the connect handlers run again;
// when a dial is in flight the call is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		handlers := c.connectHandlersLocked()
		c.mu.Unlock()
		logger.Debugf("[socket] already connected")
		for _, h := range handlers {
			h()
		}
		return nil
	}
	if c.connecting {
		c.mu.Unlock()
		logger.Debugf("[socket] connect in progress, skipping")
		return nil
	}
	c.connecting = true
	gen := c.gen
	c.mu.Unlock()

	conn, err := c.dial(ctx, c.url())

	c.mu.Lock()
	if gen != c.gen {
		// Disconnect ran while dialing.
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrNotConnected
	}
	c.connecting = false
	if err != nil {
		c.mu.Unlock()
		logger.Errorf("[socket] connect failed: %v", err)
		return err
	}
	c.conn = conn
	c.send = make(chan []byte, sendBuffer)
	go c.readPump(conn, gen)
	go writePump(conn, c.send)
	handlers := c.connectHandlersLocked()
	c.mu.Unlock()

	logger.Infof("[socket] connected")
	for _, h := range handlers {
		h()
	}
	return nil
}

func (c *Client) readPump(conn ConnLike, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.closed(gen, err)
			return
		}
		var msg api.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("[socket] dropping undecodable frame: %v", err)
			continue
		}

		c.mu.Lock()
		handlers := make([]MessageHandler, 0, len(c.onMessage))
		for _, h := range c.onMessage {
			handlers = append(handlers, h)
		}
		c.mu.Unlock()

		for _, h := range handlers {
			h(msg)
		}
	}
}

func writePump(conn ConnLike, send <-chan []byte) {
	for data := range send {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warnf("[socket] write failed: %v", err)
		}
	}
}

// closed handles a connection that dropped on its own.
func (c *Client) closed(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen || c.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	close(c.send)
	c.gen++
	handlers := c.disconnectHandlersLocked()
	c.mu.Unlock()

	_ = conn.Close()
	logger.Infof("[socket] connection closed: %v", err)
	for _, h := range handlers {
		h()
	}
}

// Send queues msg for writing. Delivery is best-effort.
func (c *Client) Send(msg OutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		logger.Warnf("[socket] not connected, dropping %s message", msg.Type)
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		logger.Warnf("[socket] send buffer full, dropping %s message", msg.Type)
		return ErrSendBacklog
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Disconnect closes the connection, if any, and runs the disconnect handlers.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.connecting = false
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	close(c.send)
	handlers := c.disconnectHandlersLocked()
	c.mu.Unlock()

	_ = conn.Close()
	logger.Infof("[socket] disconnected")
	for _, h := range handlers {
		h()
	}
}

// Reset drops every handler and then disconnects, as on logout.
func (c *Client) Reset() {
	c.mu.Lock()
	c.onMessage = make(map[uint64]MessageHandler)
	c.onConnect = make(map[uint64]ConnectHandler)
	c.onDisconnect = make(map[uint64]DisconnectHandler)
	c.mu.Unlock()
	c.Disconnect()
}

func (c *Client) OnMessage(h MessageHandler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextIDLocked()
	c.onMessage[id] = h
	return func() {
		c.mu.Lock()
		delete(c.onMessage, id)
		c.mu.Unlock()
	}
}

func (c *Client) OnConnect(h ConnectHandler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextIDLocked()
	c.onConnect[id] = h
	return func() {
		c.mu.Lock()
		delete(c.onConnect, id)
		c.mu.Unlock()
	}
}

func (c *Client) OnDisconnect(h DisconnectHandler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextIDLocked()
	c.onDisconnect[id] = h
	return func() {
		c.mu.Lock()
		delete(c.onDisconnect, id)
		c.mu.Unlock()
	}
}

func (c *Client) nextIDLocked() uint64 {
	c.nextID++
	return c.nextID
}

func (c *Client) connectHandlersLocked() []ConnectHandler {
	out := make([]ConnectHandler, 0, len(c.onConnect))
	for _, h := range c.onConnect {
		out = append(out, h)
	}
	return out
}

func (c *Client) disconnectHandlersLocked() []DisconnectHandler {
	out := make([]DisconnectHandler, 0, len(c.onDisconnect))
	for _, h := range c.onDisconnect {
		out = append(out, h)
	}
	return out
}
