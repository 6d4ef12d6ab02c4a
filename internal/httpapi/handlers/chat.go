package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/common"
)

func sessionIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		common.Fail(c, http.StatusBadRequest, 10005, "invalid session id")
		return 0, false
	}
	return id, true
}

// ListChatSessions loads one page of sessions, or reloads page one when
// refresh=true.
func (h *Handler) ListChatSessions(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("refresh") == "true" {
		if _, err := h.App.Chat.RefreshSessions(ctx); err != nil {
			failErr(c, err)
			return
		}
	} else {
		page, ok := pageQuery(c)
		if !ok {
			return
		}
		if _, err := h.App.Chat.FetchSessions(ctx, page); err != nil {
			failErr(c, err)
			return
		}
	}

	current, _ := h.App.Chat.CurrentSession()
	common.OK(c, gin.H{
		"sessions": h.App.Chat.Sessions(),
		"hasMore":  h.App.Chat.HasMoreSessions(),
		"current":  current.ID,
	})
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	if _, err := h.App.Chat.FetchMessages(c.Request.Context(), id, page); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{
		"sessionId": id,
		"messages":  h.App.Chat.Messages(id),
		"page":      h.App.Chat.MessagesPage(id),
		"hasMore":   h.App.Chat.HasMoreMessages(id),
	})
}

func (h *Handler) SelectChatSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var (
		sess  api.ChatSession
		found bool
	)
	if c.DefaultQuery("markRead", "true") == "true" {
		sess, found = h.App.Chat.SelectAndMarkRead(id)
	} else {
		sess, found = h.App.Chat.SelectSession(id)
	}
	if !found {
		common.Fail(c, http.StatusNotFound, 40401, "session not found")
		return
	}
	common.OK(c, sess)
}

type sendChatReq struct {
	SessionID int64           `json:"sessionId" binding:"required"`
	Content   string          `json:"content" binding:"required"`
	Type      api.MessageType `json:"type"`
}

// SendChatMessage answers 200 even when the socket is down: the message is
// kept locally with status failed so the operator can see it.
func (h *Handler) SendChatMessage(c *gin.Context) {
	var req sendChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "sessionId and content required")
		return
	}
	if req.Type != "" && req.Type != api.MessageText && req.Type != api.MessageImage {
		common.Fail(c, http.StatusBadRequest, 10006, "unsupported message type")
		return
	}

	m, err := h.App.Chat.SendMessage(req.SessionID, req.Content, req.Type)
	if err != nil && m.LocalID == "" {
		failErr(c, err)
		return
	}
	common.OK(c, m)
}

// OpenChat subscribes to the socket, as when the chat view mounts.
func (h *Handler) OpenChat(c *gin.Context) {
	if err := h.App.Chat.Initialize(c.Request.Context()); err != nil {
		common.Fail(c, http.StatusBadGateway, 50204, "chat connection failed")
		return
	}
	common.OK(c, gin.H{"connected": h.App.Socket.IsConnected()})
}

func (h *Handler) CloseChat(c *gin.Context) {
	h.App.Chat.Cleanup()
	common.OK(c, gin.H{"connected": false})
}

type chatViewReq struct {
	InView *bool `json:"inView" binding:"required"`
}

func (h *Handler) SetChatView(c *gin.Context) {
	var req chatViewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "inView required")
		return
	}
	h.App.Chat.SetInChatView(*req.InView)
	common.OK(c, gin.H{"inView": *req.InView})
}
