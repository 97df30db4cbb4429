package model

import "time"

type Video struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:256;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	FilePath      string    `gorm:"size:512;not null" json:"file_path"`
	ThumbnailPath string    `gorm:"size:512" json:"thumbnail_path"`
	Duration      float64   `json:"duration"` // seconds
	Subject       string    `gorm:"size:128;index" json:"subject"`
	Topic         string    `gorm:"size:128;index" json:"topic"`
	Level         string    `gorm:"size:64;index" json:"level"` // e.g. "High School", "College"
	Transcript    string    `gorm:"type:longtext" json:"transcript"`
	UploaderID    uint      `gorm:"not null;index" json:"uploader_id"`
	ViewsCount    int       `gorm:"default:0" json:"views_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
