package repository

import (
	"fmt"

	"gorm.io/gorm"

	"learnhub/internal/model"
)

type ChatHistoryRepository struct {
	db *gorm.DB
}

func NewChatHistoryRepository(db *gorm.DB) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: db}
}

func (r *ChatHistoryRepository) Create(entry *model.ChatHistory) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create chat history failed: %w", err)
	}
	return nil
}

// ListRecent returns the most recent limit turns in chronological order
// (oldest first within the window).
func (r *ChatHistoryRepository) ListRecent(userID uint, limit int) ([]model.ChatHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []model.ChatHistory
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list chat history failed: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
