package messages

import (
	"context"
	"errors"

	"restobot/internal/models"

	"gorm.io/gorm"
)

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) FindActive(ctx context.Context, restaurantID uint, msgType, language string) (*models.RestaurantMessage, error) {
	var msg models.RestaurantMessage
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND type = ? AND language = ? AND active = ?", restaurantID, msgType, language, true).
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *GormMessageRepository) FindActiveAnyLanguage(ctx context.Context, restaurantID uint, msgType string) (*models.RestaurantMessage, error) {
	var msg models.RestaurantMessage
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND type = ? AND active = ?", restaurantID, msgType, true).
		Order("updated_at DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

type GormLegacyRepository struct {
	db *gorm.DB
}

func NewGormLegacyRepository(db *gorm.DB) *GormLegacyRepository {
	return &GormLegacyRepository{db: db}
}

func (r *GormLegacyRepository) FindApproved(ctx context.Context, restaurantID uint, language string) ([]models.LegacyTemplate, error) {
	var out []models.LegacyTemplate
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND language = ? AND status = ?", restaurantID, language, "APPROVED").
		Find(&out).Error
	return out, err
}

func (r *GormLegacyRepository) FindApprovedAnyLanguage(ctx context.Context, restaurantID uint) ([]models.LegacyTemplate, error) {
	var out []models.LegacyTemplate
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND status = ?", restaurantID, "APPROVED").
		Find(&out).Error
	return out, err
}

type GormRestaurantLookup struct {
	db *gorm.DB
}

func NewGormRestaurantLookup(db *gorm.DB) *GormRestaurantLookup {
	return &GormRestaurantLookup{db: db}
}

func (r *GormRestaurantLookup) DefaultLanguage(ctx context.Context, restaurantID uint) (string, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).First(&restaurant, restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return restaurant.DefaultLanguage, nil
}
