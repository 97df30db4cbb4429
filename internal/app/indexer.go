package app

import (
	"context"

	"learnhub/internal/contextstore"
)

// ContextIndexer accepts best-effort enrichment requests for the embedding
// store. The production implementation publishes to RabbitMQ; tests swap in
// a fake. Indexing failures never fail the primary upload.
type ContextIndexer interface {
	Index(ctx context.Context, req contextstore.IndexRequest) error
}
