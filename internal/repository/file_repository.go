package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"leadchat/internal/model"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(file *model.File) error {
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("create file record failed: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByFilename(filename string) (*model.File, error) {
	var file model.File
	if err := r.db.Where("filename = ?", filename).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file record failed: %w", err)
	}
	return &file, nil
}

// ListByMessageID returns files attached to a message, oldest first.
func (r *FileRepository) ListByMessageID(messageID uint) ([]model.File, error) {
	var files []model.File
	if err := r.db.Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files failed: %w", err)
	}
	return files, nil
}

// AttachToMessage sets message_id on the named file records.
func (r *FileRepository) AttachToMessage(filenames []string, messageID uint) error {
	if len(filenames) == 0 {
		return nil
	}
	if err := r.db.Model(&model.File{}).Where("filename IN ?", filenames).
		Update("message_id", messageID).Error; err != nil {
		return fmt.Errorf("attach files to message failed: %w", err)
	}
	return nil
}

func (r *FileRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&model.File{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete file record failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
