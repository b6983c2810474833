package bot

import (
	"context"
	"errors"

	"restobot/internal/models"

	"gorm.io/gorm"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListActive(ctx context.Context) ([]models.BotConfig, error) {
	var out []models.BotConfig
	err := r.db.WithContext(ctx).Where("active = ?", true).Find(&out).Error
	return out, err
}

// FindActiveByTrigger compares lowered phrases so "Menu" and "menu"
// collide. Returns nil without error on a miss.
func (r *GormRepository) FindActiveByTrigger(ctx context.Context, phrase string) (*models.BotConfig, error) {
	var cfg models.BotConfig
	err := r.db.WithContext(ctx).
		Where("active = ? AND LOWER(trigger_phrase) = ?", true, phrase).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *GormRepository) Save(ctx context.Context, cfg *models.BotConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *GormRepository) FindByID(ctx context.Context, id uint) (*models.BotConfig, error) {
	var cfg models.BotConfig
	err := r.db.WithContext(ctx).First(&cfg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
