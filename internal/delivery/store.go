package delivery

import (
	"context"

	"restobot/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// GormOutboundLogger persists DeliveryLog rows. Logging must never fail
// a send, so errors are only logged.
type GormOutboundLogger struct {
	db *gorm.DB
}

func NewGormOutboundLogger(db *gorm.DB) *GormOutboundLogger {
	return &GormOutboundLogger{db: db}
}

func (l *GormOutboundLogger) LogOutbound(ctx context.Context, restaurantID uint, phone, body, status, errMsg string) {
	row := models.DeliveryLog{
		RestaurantID: restaurantID,
		Phone:        phone,
		Direction:    "out",
		Body:         body,
		Status:       status,
		Error:        errMsg,
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Error().Err(err).Msg("failed to write delivery log")
	}
}

func (l *GormOutboundLogger) LogInbound(ctx context.Context, restaurantID uint, phone, body string) {
	row := models.DeliveryLog{
		RestaurantID: restaurantID,
		Phone:        phone,
		Direction:    "in",
		Body:         body,
		Status:       "received",
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Error().Err(err).Msg("failed to write delivery log")
	}
}
