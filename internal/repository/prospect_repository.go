package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"leadchat/internal/model"
)

type ProspectRepository struct {
	db *gorm.DB
}

func NewProspectRepository(db *gorm.DB) *ProspectRepository {
	return &ProspectRepository{db: db}
}

func (r *ProspectRepository) Create(prospect *model.Prospect) error {
	if err := r.db.Create(prospect).Error; err != nil {
		return fmt.Errorf("create prospect failed: %w", err)
	}
	return nil
}

// List returns prospects newest first.
func (r *ProspectRepository) List() ([]model.Prospect, error) {
	var prospects []model.Prospect
	if err := r.db.Order("created_at DESC").Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("list prospects failed: %w", err)
	}
	return prospects, nil
}

func (r *ProspectRepository) GetByID(id uint) (*model.Prospect, error) {
	var prospect model.Prospect
	if err := r.db.First(&prospect, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prospect failed: %w", err)
	}
	return &prospect, nil
}
