package model

import "time"

// ChatHistory is an append-only log of study-assistant turns.
type ChatHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Response    string    `gorm:"type:text;not null" json:"response"`
	ContextType string    `gorm:"size:16" json:"context_type"` // "video", "document" or ""
	ContextID   uint      `json:"context_id"`
	CreatedAt   time.Time `json:"created_at"`
}
