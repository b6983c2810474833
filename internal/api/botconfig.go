package api

import (
	"errors"
	"net/http"
	"strconv"

	"restobot/internal/bot"
	"restobot/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BotConfigHandler struct {
	Service *bot.Service
	DB      *gorm.DB
}

func NewBotConfigHandler(service *bot.Service, db *gorm.DB) *BotConfigHandler {
	return &BotConfigHandler{Service: service, DB: db}
}

func (h *BotConfigHandler) GetConfigs(c *gin.Context) {
	var configs []models.BotConfig
	q := h.DB.Order("created_at DESC")
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	if err := q.Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, configs)
}

type botConfigRequest struct {
	RestaurantID       uint   `json:"restaurant_id" binding:"required"`
	TriggerPhrase      string `json:"trigger_phrase" binding:"required"`
	ReviewDelayMinutes int    `json:"review_delay_minutes"`
	HoursEnabled       bool   `json:"hours_enabled"`
	HoursStart         int    `json:"hours_start"`
	HoursEnd           int    `json:"hours_end"`
	Timezone           string `json:"timezone"`
}

func (h *BotConfigHandler) CreateConfig(c *gin.Context) {
	var req botConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := models.BotConfig{
		RestaurantID:       req.RestaurantID,
		TriggerPhrase:      req.TriggerPhrase,
		Active:             true,
		ReviewDelayMinutes: req.ReviewDelayMinutes,
		HoursEnabled:       req.HoursEnabled,
		HoursStart:         req.HoursStart,
		HoursEnd:           req.HoursEnd,
		Timezone:           req.Timezone,
	}
	if cfg.ReviewDelayMinutes <= 0 {
		cfg.ReviewDelayMinutes = 120
	}

	err := h.Service.Save(c.Request.Context(), &cfg)
	if errors.Is(err, bot.ErrDuplicateTrigger) {
		c.JSON(http.StatusConflict, gin.H{"error": "trigger phrase already in use"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *BotConfigHandler) UpdateConfig(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var cfg models.BotConfig
	if err := h.DB.First(&cfg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "config not found"})
		return
	}

	var req botConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg.TriggerPhrase = req.TriggerPhrase
	cfg.ReviewDelayMinutes = req.ReviewDelayMinutes
	cfg.HoursEnabled = req.HoursEnabled
	cfg.HoursStart = req.HoursStart
	cfg.HoursEnd = req.HoursEnd
	if req.Timezone != "" {
		cfg.Timezone = req.Timezone
	}

	err = h.Service.Save(c.Request.Context(), &cfg)
	if errors.Is(err, bot.ErrDuplicateTrigger) {
		c.JSON(http.StatusConflict, gin.H{"error": "trigger phrase already in use"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeactivateConfig soft-disables the bot and cancels its pending sends.
func (h *BotConfigHandler) DeactivateConfig(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	err = h.Service.Deactivate(c.Request.Context(), uint(id))
	if errors.Is(err, bot.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "config not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
