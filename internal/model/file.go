package model

import "time"

type File struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Filename     string    `gorm:"size:128;not null;uniqueIndex" json:"filename"`
	OriginalName string    `gorm:"size:256;not null" json:"original_name"`
	MimeType     string    `gorm:"size:128;not null" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	Path         string    `gorm:"size:512;not null" json:"path"`
	MessageID    *uint     `gorm:"index" json:"message_id"`
	CreatedAt    time.Time `json:"created_at"`
}
