package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"leadchat/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *model.Conversation) error {
	if err := r.db.Create(conversation).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

// List returns conversations newest-updated first. userID of 0 lists all.
func (r *ConversationRepository) List(userID uint) ([]model.Conversation, error) {
	query := r.db.Order("updated_at DESC")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var conversations []model.Conversation
	if err := query.Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return conversations, nil
}

func (r *ConversationRepository) GetByID(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.First(&conversation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

// UpdateTitle sets the title and bumps updated_at. Returns the updated
// record, or nil when the conversation does not exist.
func (r *ConversationRepository) UpdateTitle(id uint, title string) (*model.Conversation, error) {
	result := r.db.Model(&model.Conversation{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		return nil, fmt.Errorf("update conversation failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

func (r *ConversationRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&model.Conversation{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete conversation failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
