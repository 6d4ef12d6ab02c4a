package api

import (
	"context"
	"net/url"
	"strconv"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

type ChatSession struct {
	ID                 ID     `json:"id"`
	UserID             string `json:"userId"`
	Name               string `json:"name"`
	Avatar             string `json:"avatar"`
	LastMessageContent string `json:"lastMessageContent"`
	LastTime           string `json:"lastTime"`
	UnreadCount        int    `json:"unreadCount"`
}

type ChatMessage struct {
	SessionID ID          `json:"sessionId"`
	UserID    string      `json:"userId"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Time      string      `json:"time"`
}

// ChatClient covers the IM REST API, which lives on its own base URL.
type ChatClient struct {
	r Requester
}

func NewChatClient(r Requester) *ChatClient {
	return &ChatClient{r: r}
}

func (c *ChatClient) Sessions(ctx context.Context, p PageParams) (*PageResult[ChatSession], error) {
	var out PageResult[ChatSession]
	if err := c.r.Get(ctx, "/sessions", p.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ChatClient) History(ctx context.Context, sessionID int64, p PageParams) (*PageResult[ChatMessage], error) {
	q := p.Values()
	q.Set("sessionId", strconv.FormatInt(sessionID, 10))
	var out PageResult[ChatMessage]
	if err := c.r.Get(ctx, "/history", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ChatClient) MarkRead(ctx context.Context, sessionID int64) error {
	return c.r.Put(ctx, "/read/"+url.PathEscape(strconv.FormatInt(sessionID, 10)), nil, nil)
}
