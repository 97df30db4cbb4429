package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"learnhub/internal/model"
)

type WatchHistoryRepository struct {
	db *gorm.DB
}

func NewWatchHistoryRepository(db *gorm.DB) *WatchHistoryRepository {
	return &WatchHistoryRepository{db: db}
}

// Upsert creates the (user, video) row or refreshes it on re-watch.
func (r *WatchHistoryRepository) Upsert(entry *model.WatchHistory) error {
	var existing model.WatchHistory
	err := r.db.Where("user_id = ? AND video_id = ?", entry.UserID, entry.VideoID).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("query watch history failed: %w", err)
		}
		entry.LastWatchedAt = time.Now()
		if err := r.db.Create(entry).Error; err != nil {
			return fmt.Errorf("create watch history failed: %w", err)
		}
		return nil
	}

	existing.WatchDuration = entry.WatchDuration
	existing.CompletionPercentage = entry.CompletionPercentage
	existing.LastWatchedAt = time.Now()
	if err := r.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("update watch history failed: %w", err)
	}
	*entry = existing
	return nil
}

func (r *WatchHistoryRepository) ListByUserID(userID uint, limit int) ([]model.WatchHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []model.WatchHistory
	if err := r.db.Where("user_id = ?", userID).Order("last_watched_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list watch history failed: %w", err)
	}
	return entries, nil
}
