// Command migrate-templates copies approved legacy templates into the
// RestaurantMessage table, one row per (restaurant, type, language)
// key. Keys that already have a row are left untouched, so the run is
// idempotent. Legacy rows stay in place as the Tier-2 fallback.
package main

import (
	"errors"
	"strings"

	"restobot/internal/config"
	"restobot/internal/database"
	"restobot/internal/logger"
	"restobot/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	logger.Init()
	cfg := config.LoadConfig()
	database.Init(cfg.DatabaseURL)
	db := database.DB

	var tmpls []models.LegacyTemplate
	if err := db.Where("status = ?", "APPROVED").Find(&tmpls).Error; err != nil {
		log.Fatal().Err(err).Msg("loading legacy templates")
	}

	migrated, skipped := 0, 0
	for _, tmpl := range tmpls {
		msgType := inferType(tmpl)
		if msgType == "" {
			skipped++
			continue
		}
		language := tmpl.Language
		if language == "" {
			language = cfg.DefaultLanguage
		}

		var existing models.RestaurantMessage
		err := db.Where("restaurant_id = ? AND type = ? AND language = ?", tmpl.RestaurantID, msgType, language).
			First(&existing).Error
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal().Err(err).Msg("checking existing message")
		}

		msg := models.RestaurantMessage{
			RestaurantID: tmpl.RestaurantID,
			Type:         msgType,
			Language:     language,
			Body:         tmpl.Body,
			MediaURL:     tmpl.MediaURL,
			Active:       true,
			UpdatedBy:    "migration",
		}
		if err := db.Create(&msg).Error; err != nil {
			log.Error().Err(err).Uint("template_id", tmpl.ID).Msg("migrating template failed")
			continue
		}
		migrated++
	}

	log.Info().Int("migrated", migrated).Int("skipped", skipped).Msg("template migration done")
}

func inferType(tmpl models.LegacyTemplate) string {
	hay := strings.ToLower(tmpl.Kind + " " + tmpl.Name)
	for _, kw := range []string{"review", "feedback", "rating"} {
		if strings.Contains(hay, kw) {
			return models.MessageTypeReview
		}
	}
	for _, kw := range []string{"menu", "welcome", "greeting"} {
		if strings.Contains(hay, kw) {
			return models.MessageTypeMenu
		}
	}
	return ""
}
