package model

import "time"

type Prospect struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	Email          string    `gorm:"size:128;not null" json:"email"`
	Phone          string    `gorm:"size:32" json:"phone,omitempty"`
	ConversationID *uint     `gorm:"index" json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
}
