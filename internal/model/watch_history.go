package model

import "time"

// WatchHistory keeps one row per (user, video); re-watching updates it.
type WatchHistory struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;index:idx_watch_user_video,unique" json:"user_id"`
	VideoID              uint      `gorm:"not null;index:idx_watch_user_video,unique" json:"video_id"`
	WatchDuration        float64   `gorm:"default:0" json:"watch_duration"`        // seconds watched
	CompletionPercentage float64   `gorm:"default:0" json:"completion_percentage"` // 0-100
	LastWatchedAt        time.Time `json:"last_watched_at"`
	CreatedAt            time.Time `json:"created_at"`
}
