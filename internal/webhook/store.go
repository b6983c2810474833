package webhook

import (
	"context"

	"restobot/internal/models"

	"gorm.io/gorm"
)

type GormInteractionRecorder struct {
	db *gorm.DB
}

func NewGormInteractionRecorder(db *gorm.DB) *GormInteractionRecorder {
	return &GormInteractionRecorder{db: db}
}

func (r *GormInteractionRecorder) Record(ctx context.Context, interaction *models.Interaction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}
