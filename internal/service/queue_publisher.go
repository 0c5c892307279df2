package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/report-vault/internal/config"
	q "github.com/iliyamo/report-vault/internal/queue"
)

// EventPublisher ships audit events.  Publishing happens after the state
// change has committed; a failure is logged and never fails the request.
type EventPublisher interface {
	Publish(ctx context.Context, ev q.AuditEvent) error
}

// NewEventPublisher returns the AMQP publisher when AUDIT_ENABLED is set,
// a no-op otherwise.
func NewEventPublisher(cfg config.Config) EventPublisher {
	if !cfg.AuditEnabled {
		return NopPublisher{}
	}
	return &AMQPPublisher{URL: cfg.AMQPURL, Queue: cfg.AuditQueue, Timeout: cfg.AuditPublishTimeout}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.AuditEvent) error { return nil }

// AMQPPublisher dials the broker per event and publishes a persistent
// JSON message to a durable queue on the default exchange.  Timeout bounds
// the whole exchange with the broker, dial included.  Errors are returned
// to the caller, which owns logging them.
type AMQPPublisher struct {
	URL     string
	Queue   string
	Timeout time.Duration
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev q.AuditEvent) error {
	// The state change has already committed; a client hanging up must
	// not drop its audit event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.Timeout)
	defer cancel()

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.Timeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// newEvent stamps an event with the current time.
func newEvent(typ string, userID uint64) q.AuditEvent {
	return q.AuditEvent{Type: typ, UserID: userID, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}
