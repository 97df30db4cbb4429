// Package contextstore holds per-user collections of embedded learning
// material (video transcripts, document contents) and answers nearest-
// neighbor queries over them. Collections are separate per user so one
// user's context can never appear in another user's results.
package contextstore

import "context"

const (
	KindVideo    = "video"
	KindDocument = "document"
)

// Item is one embedded piece of learning material. Items are keyed by
// (Kind, SourceID) within their owner's collection; upserting the same key
// replaces the previous item.
type Item struct {
	Kind     string
	SourceID uint
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// Result is a retrieved context snippet with its similarity score.
type Result struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float32           `json:"score"`
}

// Store is the per-user embedding collection. Implementations must create a
// user's collection lazily on first write or query, and must scope every
// operation to that user's collection only.
type Store interface {
	Upsert(ctx context.Context, userID uint, item Item) error
	// Query returns up to topK nearest items by cosine similarity. An empty
	// result is valid and not an error.
	Query(ctx context.Context, userID uint, vector []float32, topK int) ([]Result, error)
}
