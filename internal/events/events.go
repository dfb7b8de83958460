// Package events publishes job lifecycle events to RabbitMQ and consumes queued analysis
// requests for the worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/types"
	"github.com/streadway/amqp"
)

// Broker names.
const (
	Exchange           = "proofdin.events"
	RoutingJobAnalyzed = "job.analyzed"
	AnalyzeQueue       = "proofdin.analyze"
)

// JobAnalyzed is published after a job's skills are computed.
type JobAnalyzed struct {
	JobID       uuid.UUID `json:"jobId"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Skills      []string  `json:"skills"`
	SkillSource string    `json:"skillSource"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// AnalyzeMessage is the body of a message on the analyze queue.
type AnalyzeMessage struct {
	OwnerID uuid.UUID               `json:"ownerId"`
	Request types.AnalyzeJobRequest `json:"request"`
}

// Publisher sends domain events.
type Publisher interface {
	PublishJobAnalyzed(ctx context.Context, event JobAnalyzed) error
	Close() error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishJobAnalyzed(context.Context, JobAnalyzed) error { return nil }

func (NopPublisher) Close() error { return nil }

// AMQPPublisher publishes JSON events to the topic exchange.
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
}

// DialPublisher connects to the broker at url and declares the events exchange.
func DialPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn}, nil
}

// PublishJobAnalyzed publishes event with routing key job.analyzed.
func (p *AMQPPublisher) PublishJobAnalyzed(_ context.Context, event JobAnalyzed) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.publish(RoutingJobAnalyzed, body)
}

func (p *AMQPPublisher) publish(routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	return ch.Publish(
		Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Close closes the broker connection.
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}
