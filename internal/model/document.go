package model

import "time"

type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	FilePath  string    `gorm:"size:512;not null" json:"file_path"`
	FileType  string    `gorm:"size:16;not null" json:"file_type"` // pdf, docx, pptx, txt
	Content   string    `gorm:"type:longtext" json:"content"`      // extracted text
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
