package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"learnhub/internal/ai"
	"learnhub/internal/contextstore"
	"learnhub/internal/pkg/logger"
)

// ContextIndexWorker consumes index requests off the queue, embeds the
// content and upserts it into the owner's context collection. Failures are
// logged and the delivery dropped; a request can be re-published out of band.
type ContextIndexWorker struct {
	conn      *amqp.Connection
	embedder  ai.Embedder
	store     contextstore.Store
	queueName string
	log       *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewContextIndexWorker(
	conn *amqp.Connection,
	embedder ai.Embedder,
	store contextstore.Store,
	queueName string,
	log *logger.Logger,
) *ContextIndexWorker {
	return &ContextIndexWorker{
		conn:      conn,
		embedder:  embedder,
		store:     store,
		queueName: queueName,
		log:       log,
	}
}

func (w *ContextIndexWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var req contextstore.IndexRequest
				if err := json.Unmarshal(d.Body, &req); err != nil {
					w.log.Error("worker decode index request failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.IndexOne(workerCtx, req); err != nil {
					w.log.Error("worker index context failed",
						"user_id", req.UserID, "kind", req.Kind, "source_id", req.SourceID, "error", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// IndexOne embeds one request's content and upserts it. Re-indexing the same
// (kind, source id) for a user replaces the prior item.
func (w *ContextIndexWorker) IndexOne(ctx context.Context, req contextstore.IndexRequest) error {
	if req.Content == "" {
		return fmt.Errorf("empty content for %s %d", req.Kind, req.SourceID)
	}

	vector, err := w.embedder.Embed(ctx, req.Content)
	if err != nil {
		return fmt.Errorf("embed context failed: %w", err)
	}

	metadata := make(map[string]string, len(req.Metadata)+2)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	// Explicit metadata may carry its own type label (documents label by
	// file type); the kind only fills the gap.
	if metadata["type"] == "" {
		metadata["type"] = req.Kind
	}
	metadata["id"] = strconv.FormatUint(uint64(req.SourceID), 10)

	return w.store.Upsert(ctx, req.UserID, contextstore.Item{
		Kind:     req.Kind,
		SourceID: req.SourceID,
		Content:  req.Content,
		Vector:   vector,
		Metadata: metadata,
	})
}

func (w *ContextIndexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
