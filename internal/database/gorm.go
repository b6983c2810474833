package database

import (
	"strings"

	"restobot/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the database and runs migrations. A DATABASE_URL starting
// with postgres:// selects the Postgres driver; anything else is
// treated as a sqlite file path.
func Init(databaseURL string) {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	err = DB.AutoMigrate(
		&models.Restaurant{},
		&models.BotConfig{},
		&models.RestaurantMessage{},
		&models.LegacyTemplate{},
		&models.WhatsAppContact{},
		&models.Interaction{},
		&models.Campaign{},
		&models.ScheduledMessage{},
		&models.DeliveryLog{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run auto-migration")
	}

	log.Info().Msg("database ready")
}
