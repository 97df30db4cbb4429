package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// New dials the broker and verifies a channel can be opened before handing
// the connection out.
func New(ctx context.Context, url string) (*amqp.Connection, error) {
	type dialResult struct {
		conn *amqp.Connection
		err  error
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	done := make(chan dialResult, 1)
	go func() {
		conn, err := amqp.Dial(url)
		if err != nil {
			done <- dialResult{err: fmt.Errorf("dial rabbitmq failed: %w", err)}
			return
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			done <- dialResult{err: fmt.Errorf("open rabbitmq channel failed: %w", err)}
			return
		}
		_ = ch.Close()
		done <- dialResult{conn: conn}
	}()

	select {
	case <-checkCtx.Done():
		return nil, fmt.Errorf("rabbitmq connect timeout: %w", checkCtx.Err())
	case result := <-done:
		if result.err != nil {
			return nil, result.err
		}
		return result.conn, nil
	}
}
