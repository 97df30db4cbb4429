package contextstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore keeps one collection per user in process memory. Like the job
// table, contents are process-lifetime only; the external vector database is
// the durable system of record in deployments that need one.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[uint]*collection
}

type collection struct {
	mu    sync.RWMutex
	items map[string]Item // key: "<kind>_<sourceID>"
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[uint]*collection)}
}

func itemKey(kind string, sourceID uint) string {
	return fmt.Sprintf("%s_%d", kind, sourceID)
}

// getOrCreate returns the user's collection, creating it on first use.
func (s *MemoryStore) getOrCreate(userID uint) *collection {
	s.mu.RLock()
	col, ok := s.collections[userID]
	s.mu.RUnlock()
	if ok {
		return col
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok = s.collections[userID]; ok {
		return col
	}
	col = &collection{items: make(map[string]Item)}
	s.collections[userID] = col
	return col
}

func (s *MemoryStore) Upsert(ctx context.Context, userID uint, item Item) error {
	if item.Kind != KindVideo && item.Kind != KindDocument {
		return fmt.Errorf("unknown context kind %q", item.Kind)
	}
	if len(item.Vector) == 0 {
		return fmt.Errorf("empty vector for %s %d", item.Kind, item.SourceID)
	}

	col := s.getOrCreate(userID)
	col.mu.Lock()
	defer col.mu.Unlock()
	col.items[itemKey(item.Kind, item.SourceID)] = item
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, userID uint, vector []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = 3
	}

	col := s.getOrCreate(userID)
	col.mu.RLock()
	defer col.mu.RUnlock()

	results := make([]Result, 0, len(col.items))
	for _, item := range col.items {
		results = append(results, Result{
			Content:  item.Content,
			Metadata: item.Metadata,
			Score:    cosineSimilarity(vector, item.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Len reports the number of items in the user's collection.
func (s *MemoryStore) Len(userID uint) int {
	col := s.getOrCreate(userID)
	col.mu.RLock()
	defer col.mu.RUnlock()
	return len(col.items)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
