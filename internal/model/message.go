package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Role           string    `gorm:"size:16;not null;index" json:"role"`
	Metadata       JSONMap   `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
