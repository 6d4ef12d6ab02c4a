// Package chat caches the operator's conversations and their message history,
// merging REST pages with messages pushed over the IM socket.
package chat

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/socket"
)

type SessionAPI interface {
	Sessions(ctx context.Context, p api.PageParams) (*api.PageResult[api.ChatSession], error)
	History(ctx context.Context, sessionID int64, p api.PageParams) (*api.PageResult[api.ChatMessage], error)
}

type ReadMarker interface {
	MarkRead(ctx context.Context, sessionID int64) error
}

type Socket interface {
	Connect(ctx context.Context) error
	OnMessage(h socket.MessageHandler) func()
	Send(msg socket.OutboundMessage) error
	Reset()
}

// Runner runs fire-and-forget work off the caller's path.
type Runner interface {
	Go(name string, fn func(ctx context.Context) error)
}

type Cache struct {
	api      SessionAPI
	reads    ReadMarker
	sock     Socket
	runner   Runner
	pageSize int
	self     func() string
	now      func() time.Time

	mu              sync.RWMutex
	sessions        []api.ChatSession
	messages        map[int64][]Message
	current         int64
	hasCurrent      bool
	inView          bool
	sessionsLoading bool
	sessionsPage    int
	sessionsTotal   int
	msgLoading      map[int64]bool
	msgPage         map[int64]int
	msgTotal        map[int64]int
	unsubscribe     func()
}

type Option func(*Cache)

// WithSelf sets the operator id stamped on outbound messages.
func WithSelf(fn func() string) Option {
	return func(c *Cache) { c.self = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func NewCache(sessions SessionAPI, reads ReadMarker, sock Socket, runner Runner, pageSize int, opts ...Option) *Cache {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	c := &Cache{
		api:        sessions,
		reads:      reads,
		sock:       sock,
		runner:     runner,
		pageSize:   pageSize,
		self:       func() string { return "" },
		now:        time.Now,
		inView:     true,
		messages:   make(map[int64][]Message),
		msgLoading: make(map[int64]bool),
		msgPage:    make(map[int64]int),
		msgTotal:   make(map[int64]int),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchSessions loads one page of conversations. Page 1 replaces the list,
// unless a list is already held, in which case it is returned unchanged.
// Later pages append.
func (c *Cache) FetchSessions(ctx context.Context, page int) ([]api.ChatSession, error) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if page == 1 && len(c.sessions) > 0 {
		out := slices.Clone(c.sessions)
		c.mu.Unlock()
		return out, nil
	}
	c.sessionsLoading = true
	c.mu.Unlock()

	res, err := c.api.Sessions(ctx, api.PageParams{Page: page, PageSize: c.pageSize})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionsLoading = false
	if err != nil {
		return nil, err
	}

	if page == 1 {
		c.sessions = slices.Clone(res.Records)
	} else {
		c.sessions = append(c.sessions, res.Records...)
	}
	c.sessionsPage = page
	c.sessionsTotal = res.TotalPages()
	return slices.Clone(c.sessions), nil
}

// RefreshSessions drops the session list and loads page 1 again.
func (c *Cache) RefreshSessions(ctx context.Context) ([]api.ChatSession, error) {
	c.mu.Lock()
	c.sessions = nil
	c.sessionsPage, c.sessionsTotal = 0, 0
	c.mu.Unlock()
	return c.FetchSessions(ctx, 1)
}

// FetchMessages loads one page of history for a session. Page 1 replaces the
// cached list; later pages hold older history and are prepended. It returns
// the fetched page.
func (c *Cache) FetchMessages(ctx context.Context, sessionID int64, page int) ([]Message, error) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.msgLoading[sessionID] = true
	c.mu.Unlock()

	res, err := c.api.History(ctx, sessionID, api.PageParams{Page: page, PageSize: c.pageSize})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgLoading[sessionID] = false
	if err != nil {
		return nil, err
	}

	fetched := make([]Message, 0, len(res.Records))
	for _, m := range res.Records {
		fetched = append(fetched, Message{ChatMessage: m})
	}

	if page == 1 {
		c.messages[sessionID] = slices.Clone(fetched)
	} else {
		merged := append(slices.Clone(fetched), c.messages[sessionID]...)
		sortByTime(merged)
		c.messages[sessionID] = merged
	}
	c.msgPage[sessionID] = page
	c.msgTotal[sessionID] = res.TotalPages()
	return fetched, nil
}

// sortByTime orders msgs by timestamp when every timestamp parses, keeping
// arrival order for ties. Otherwise the order is left alone.
func sortByTime(msgs []Message) {
	times := make([]time.Time, len(msgs))
	for i, m := range msgs {
		t, ok := parseTime(m.Time)
		if !ok {
			return
		}
		times[i] = t
	}
	idx := make([]int, len(msgs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return times[idx[a]].Before(times[idx[b]]) })

	sorted := make([]Message, len(msgs))
	for i, j := range idx {
		sorted[i] = msgs[j]
	}
	copy(msgs, sorted)
}

func (c *Cache) findLocked(id int64) int {
	for i := range c.sessions {
		if int64(c.sessions[i].ID) == id {
			return i
		}
	}
	return -1
}

// SelectSession makes id the current session. Unknown ids leave the selection
// unchanged.
func (c *Cache) SelectSession(id int64) (api.ChatSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.findLocked(id)
	if i < 0 {
		return api.ChatSession{}, false
	}
	c.current, c.hasCurrent = id, true
	return c.sessions[i], true
}

// SelectAndMarkRead selects id and zeroes its unread counter at once. The
// remote mark-read is best-effort; a failure is logged and not rolled back.
func (c *Cache) SelectAndMarkRead(id int64) (api.ChatSession, bool) {
	c.mu.Lock()
	i := c.findLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return api.ChatSession{}, false
	}
	c.current, c.hasCurrent = id, true
	c.sessions[i].UnreadCount = 0
	s := c.sessions[i]
	c.mu.Unlock()

	c.runner.Go("mark_read", func(ctx context.Context) error {
		return c.reads.MarkRead(ctx, id)
	})
	return s, true
}

// ReceiveMessage appends a pushed message to its session. The session's
// preview always follows the message; its unread counter grows unless the
// operator is viewing that session.
func (c *Cache) ReceiveMessage(msg api.ChatMessage) {
	c.addMessage(Message{ChatMessage: msg}, true)
}

func (c *Cache) addMessage(m Message, countUnread bool) {
	id := int64(m.SessionID)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages[id] = append(c.messages[id], m)

	i := c.findLocked(id)
	if i < 0 {
		logger.Debugf("[chat] message for unlisted session %d", id)
		return
	}
	c.sessions[i].LastMessageContent = m.Content
	c.sessions[i].LastTime = m.Time
	if countUnread && !c.viewingLocked(id) {
		c.sessions[i].UnreadCount++
	}
}

func (c *Cache) viewingLocked(id int64) bool {
	return c.inView && c.hasCurrent && c.current == id
}

func (c *Cache) UpdateSessionLastMessage(id int64, content, at string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.findLocked(id); i >= 0 {
		c.sessions[i].LastMessageContent = content
		c.sessions[i].LastTime = at
	}
}

// SetInChatView records whether the operator has the chat view open.
func (c *Cache) SetInChatView(in bool) {
	c.mu.Lock()
	c.inView = in
	c.mu.Unlock()
}

// SendMessage appends a local copy of the message and writes it to the socket.
// The copy is marked sent once queued, or failed when the socket is down.
func (c *Cache) SendMessage(sessionID int64, content string, typ api.MessageType) (Message, error) {
	if typ == "" {
		typ = api.MessageText
	}
	localID, err := common.NewULID()
	if err != nil {
		return Message{}, err
	}

	c.mu.RLock()
	var receiver string
	if i := c.findLocked(sessionID); i >= 0 {
		receiver = c.sessions[i].UserID
	}
	c.mu.RUnlock()

	m := Message{
		ChatMessage: api.ChatMessage{
			SessionID: api.ID(sessionID),
			UserID:    c.self(),
			Content:   content,
			Type:      typ,
			Time:      c.now().Format(localLayout),
		},
		LocalID: localID,
		Status:  StatusSending,
	}
	c.addMessage(m, false)

	sendErr := c.sock.Send(socket.OutboundMessage{
		SessionID:  sessionID,
		Content:    content,
		Type:       typ,
		ReceiverID: receiver,
	})
	m.Status = StatusSent
	if sendErr != nil {
		m.Status = StatusFailed
	}
	c.setStatus(sessionID, localID, m.Status)
	return m, sendErr
}

func (c *Cache) setStatus(sessionID int64, localID string, st DeliveryStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.messages[sessionID]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].LocalID == localID {
			msgs[i].Status = st
			return
		}
	}
}

// Initialize subscribes to the socket and connects. A second call while
// subscribed does nothing.
func (c *Cache) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.unsubscribe != nil {
		c.mu.Unlock()
		return nil
	}
	c.unsubscribe = c.sock.OnMessage(c.ReceiveMessage)
	c.inView = true
	c.mu.Unlock()

	if err := c.sock.Connect(ctx); err != nil {
		c.mu.Lock()
		unsub := c.unsubscribe
		c.unsubscribe = nil
		c.mu.Unlock()
		if unsub != nil {
			unsub()
		}
		return err
	}
	return nil
}

// Cleanup drops the subscription and tears the socket down.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.inView = false
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.sock.Reset()
}

func (c *Cache) Subscribed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unsubscribe != nil
}

// ClearAll empties every cache, as on logout.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = nil
	c.messages = make(map[int64][]Message)
	c.msgLoading = make(map[int64]bool)
	c.msgPage = make(map[int64]int)
	c.msgTotal = make(map[int64]int)
	c.current, c.hasCurrent = 0, false
	c.sessionsPage, c.sessionsTotal = 0, 0
}

func (c *Cache) ClearSessionMessages(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.messages, id)
	delete(c.msgPage, id)
	delete(c.msgTotal, id)
}

func (c *Cache) Sessions() []api.ChatSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.sessions)
}

func (c *Cache) Messages(id int64) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.messages[id])
}

func (c *Cache) CurrentSession() (api.ChatSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasCurrent {
		return api.ChatSession{}, false
	}
	if i := c.findLocked(c.current); i >= 0 {
		return c.sessions[i], true
	}
	return api.ChatSession{}, false
}

func (c *Cache) CurrentMessages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasCurrent {
		return nil
	}
	return slices.Clone(c.messages[c.current])
}

func (c *Cache) SessionsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionsLoading
}

func (c *Cache) HasMoreSessions() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionsPage < c.sessionsTotal
}

func (c *Cache) HasMoreMessages(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.msgPage[id] < c.msgTotal[id]
}

func (c *Cache) MessagesLoading(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.msgLoading[id]
}

func (c *Cache) MessagesPage(id int64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.msgPage[id]
}
