package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/logger"
)

var ErrBadReceipt = errors.New("rabbitmq: malformed read receipt")

// ReceiptMessage asks the worker to mark a chat session read on behalf of the
// operator whose bearer token is sealed in SealedToken. Console and worker
// share PERSIST_SECRET; the broker only ever sees ciphertext.
type ReceiptMessage struct {
	JobID       string    `json:"job_id"`
	SessionID   int64     `json:"session_id"`
	SealedToken []byte    `json:"sealed_token"`
	Attempt     int       `json:"attempt"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

func (m ReceiptMessage) Validate() error {
	if m.JobID == "" || m.SessionID <= 0 || len(m.SealedToken) == 0 {
		return ErrBadReceipt
	}
	return nil
}

// TokenSealer is satisfied by persist.Sealer.
type TokenSealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(box []byte) ([]byte, error)
}

type receiptPublisher interface {
	PublishReceipt(ctx context.Context, m ReceiptMessage) error
}

// ReadReceipts queues mark-read calls instead of making them inline.
type ReadReceipts struct {
	pub    receiptPublisher
	tokens apiclient.TokenSource
	sealer TokenSealer
}

func NewReadReceipts(pub receiptPublisher, tokens apiclient.TokenSource, sealer TokenSealer) *ReadReceipts {
	return &ReadReceipts{pub: pub, tokens: tokens, sealer: sealer}
}

func (r *ReadReceipts) MarkRead(ctx context.Context, sessionID int64) error {
	jobID, err := common.NewULID()
	if err != nil {
		return err
	}
	sealed, err := r.sealer.Seal([]byte(r.tokens.Token()))
	if err != nil {
		return err
	}
	return r.pub.PublishReceipt(ctx, ReceiptMessage{
		JobID:       jobID,
		SessionID:   sessionID,
		SealedToken: sealed,
		EnqueuedAt:  time.Now(),
	})
}

type retryPublisher interface {
	PublishRetry(ctx context.Context, m ReceiptMessage, delay time.Duration) error
}

// MarkFunc performs the remote mark-read with the operator's token.
type MarkFunc func(ctx context.Context, token string, sessionID int64) error

type ReceiptHandler struct {
	retry       retryPublisher
	sealer      TokenSealer
	mark        MarkFunc
	maxAttempts int
	retryDelay  time.Duration
}

func NewReceiptHandler(retry retryPublisher, sealer TokenSealer, mark MarkFunc, maxAttempts int, retryDelay time.Duration) *ReceiptHandler {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &ReceiptHandler{retry: retry, sealer: sealer, mark: mark, maxAttempts: maxAttempts, retryDelay: retryDelay}
}

// Handle settles one delivery. Malformed messages, tokens that fail to open and
// receipts out of attempts go to the DLQ; other failures are parked on the
// retry queue.
func (h *ReceiptHandler) Handle(ctx context.Context, d amqp.Delivery) {
	var m ReceiptMessage
	if err := json.Unmarshal(d.Body, &m); err != nil || m.Validate() != nil {
		logger.Warnf("[receipt] bad message: %v", errors.Join(err, m.Validate()))
		_ = d.Nack(false, false)
		return
	}

	token, err := h.sealer.Open(m.SealedToken)
	if err != nil {
		logger.WithField("job", m.JobID).Warnf("[receipt] token does not open: %v", err)
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	err = h.mark(ctx, string(token), m.SessionID)
	if err == nil {
		if err := d.Ack(false); err != nil {
			logger.Errorf("[receipt] ack failed job=%s err=%v", m.JobID, err)
		}
		return
	}

	log := logger.WithField("job", m.JobID)
	m.Attempt++
	if m.Attempt >= h.maxAttempts || errors.Is(err, apiclient.ErrUnauthorized) {
		log.Errorf("[receipt] session=%d giving up after %d attempts cost=%s err=%v", m.SessionID, m.Attempt, time.Since(start), err)
		_ = d.Nack(false, false)
		return
	}

	if perr := h.retry.PublishRetry(ctx, m, h.retryDelay); perr != nil {
		log.Errorf("[receipt] retry publish failed: %v", perr)
		_ = d.Nack(false, false)
		return
	}
	log.Warnf("[receipt] session=%d attempt=%d failed, retrying: %v", m.SessionID, m.Attempt, err)
	_ = d.Ack(false)
}
