package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/config"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/persist"
	"github.com/suPer8Hu/mall-console/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		logger.Fatalf("init logger: %v", err)
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		logger.Fatalf("declare topology: %v", err)
	}

	// strict concurrency control
	concurrency := cfg.WorkerConcurrency
	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	retry, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		logger.Fatalf("retry publisher: %v", err)
	}
	defer retry.Close()

	sealer, err := persist.NewSealer(cfg.PersistSecret)
	if err != nil {
		logger.Fatalf("sealer: %v", err)
	}

	// one client for every job; the operator's token rides on the context
	chatAPI := api.NewChatClient(apiclient.New(cfg.IMBaseURL, cfg.HTTPTimeout))
	mark := func(ctx context.Context, token string, sessionID int64) error {
		return chatAPI.MarkRead(apiclient.WithToken(ctx, token), sessionID)
	}
	handler := rabbitmq.NewReceiptHandler(retry, sealer, mark, cfg.ReceiptMaxAttempts, cfg.ReceiptRetryDelay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				start := time.Now()
				handler.Handle(ctx, d)
				if cost := time.Since(start); cost > 2*time.Second {
					logger.WithField("worker", workerID).Warnf("slow receipt cost=%s", cost)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				logger.Warnf("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}
