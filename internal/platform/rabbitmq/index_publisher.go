package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"learnhub/internal/contextstore"
)

// IndexPublisher hands context-index requests to the queue consumed by the
// context index worker.
type IndexPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewIndexPublisher(conn *amqp.Connection, queueName string) *IndexPublisher {
	return &IndexPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *IndexPublisher) Index(ctx context.Context, req contextstore.IndexRequest) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal index request failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish index request failed: %w", err)
	}
	return nil
}
