package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AnalyzeHandler processes one queued analysis request.
type AnalyzeHandler func(ctx context.Context, msg AnalyzeMessage) error

// Consumer reads AnalyzeMessages from the analyze queue with a pool of workers.
type Consumer struct {
	url     string
	queue   string
	workers int
	log     *zap.Logger
}

// NewConsumer returns a consumer for the analyze queue on the broker at url.
func NewConsumer(url string, workers int, log *zap.Logger) *Consumer {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{url: url, queue: AnalyzeQueue, workers: workers, log: log}
}

// Run consumes until ctx is cancelled or the delivery channel closes, returning nil on
// cancellation. Each message is acked after handler succeeds; malformed messages and
// handler failures are rejected without requeue.
func (c *Consumer) Run(ctx context.Context, handler AnalyzeHandler) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		c.queue, // queue name
		true,    // durable
		false,   // auto-delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(c.workers, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queue, // queue name
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue: %w", err)
	}

	c.log.Info("consuming analyze queue", zap.String("queue", c.queue), zap.Int("workers", c.workers))

	var wg sync.WaitGroup
	wg.Add(c.workers)
	for i := 0; i < c.workers; i++ {
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						return
					}
					c.handleDelivery(ctx, id, d, handler)
				}
			}
		}(i + 1)
	}
	wg.Wait()
	return shutdownErr(ctx)
}

// shutdownErr reports why Run stopped. Cancellation is a normal shutdown.
func shutdownErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, worker int, d amqp.Delivery, handler AnalyzeHandler) {
	var msg AnalyzeMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.log.Warn("rejecting malformed analyze message", zap.Int("worker", worker), zap.Error(err))
		if err := d.Reject(false); err != nil {
			c.log.Error("failed to reject message", zap.Error(err))
		}
		return
	}

	c.log.Info("processing analyze message", zap.Int("worker", worker), zap.String("owner_id", msg.OwnerID.String()))
	if err := handler(ctx, msg); err != nil {
		c.log.Warn("analyze message failed", zap.Int("worker", worker), zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			c.log.Error("failed to nack message", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		c.log.Error("failed to ack message", zap.Error(err))
	}
}
