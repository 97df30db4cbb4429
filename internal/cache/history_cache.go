package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"learnhub/internal/model"
)

// HistoryCache keeps a short-lived copy of a user's recent chat history so
// repeated polling does not hit MySQL every time.
type HistoryCache struct {
	client     *redisv9.Client
	historyTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	return &HistoryCache{
		client:     client,
		historyTTL: historyTTL,
	}
}

func (c *HistoryCache) GetHistory(ctx context.Context, userID uint, limit int) ([]model.ChatHistory, bool, error) {
	key := c.historyKey(userID, limit)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var entries []model.ChatHistory
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return entries, true, nil
}

func (c *HistoryCache) SetHistory(ctx context.Context, userID uint, limit int, entries []model.ChatHistory) error {
	key := c.historyKey(userID, limit)
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

// InvalidateHistory drops every cached window for the user after a new turn.
func (c *HistoryCache) InvalidateHistory(ctx context.Context, userID uint) error {
	pattern := fmt.Sprintf("study:history:%d:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete history failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan history keys failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) historyKey(userID uint, limit int) string {
	return fmt.Sprintf("study:history:%d:%d", userID, limit)
}
