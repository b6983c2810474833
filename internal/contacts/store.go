package contacts

import (
	"context"
	"errors"

	"restobot/internal/models"

	"gorm.io/gorm"
)

// GormRepository is the database-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindByHash(ctx context.Context, restaurantID uint, hash string) (*models.WhatsAppContact, error) {
	var contact models.WhatsAppContact
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND phone_hash = ?", restaurantID, hash).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *GormRepository) Create(ctx context.Context, c *models.WhatsAppContact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormRepository) Update(ctx context.Context, c *models.WhatsAppContact) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// ListConsenting returns consenting contacts of a restaurant, used by
// campaign scheduling.
func (r *GormRepository) ListConsenting(ctx context.Context, restaurantID uint) ([]models.WhatsAppContact, error) {
	var out []models.WhatsAppContact
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND consent = ?", restaurantID, true).
		Order("last_contact_at DESC").
		Find(&out).Error
	return out, err
}
