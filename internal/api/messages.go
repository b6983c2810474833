package api

import (
	"net/http"

	"restobot/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MessageHandler manages the canonical RestaurantMessage content rows.
type MessageHandler struct {
	DB *gorm.DB
}

func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{DB: db}
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	var msgs []models.RestaurantMessage
	q := h.DB.Order("updated_at DESC")
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	if err := q.Find(&msgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

type messageRequest struct {
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Language     string `json:"language" binding:"required"`
	Body         string `json:"body" binding:"required"`
	MediaURL     string `json:"media_url"`
	MediaKind    string `json:"media_kind"`
	CTAURL       string `json:"cta_url"`
	CTAText      string `json:"cta_text"`
	UpdatedBy    string `json:"updated_by"`
}

// UpsertMessage creates or replaces the active content for one
// (restaurant, type, language) key. Media and CTA are mutually
// exclusive template slots.
func (h *MessageHandler) UpsertMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Type != models.MessageTypeMenu && req.Type != models.MessageTypeReview {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be menu or review"})
		return
	}
	if req.MediaURL != "" && req.CTAURL != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_url and cta_url are mutually exclusive"})
		return
	}

	var msg models.RestaurantMessage
	err := h.DB.
		Where("restaurant_id = ? AND type = ? AND language = ?", req.RestaurantID, req.Type, req.Language).
		First(&msg).Error
	switch {
	case err == nil:
		// Replace in place; the uniqueness constraint forbids a second row.
	case err == gorm.ErrRecordNotFound:
		msg = models.RestaurantMessage{
			RestaurantID: req.RestaurantID,
			Type:         req.Type,
			Language:     req.Language,
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	msg.Body = req.Body
	msg.MediaURL = req.MediaURL
	msg.MediaKind = req.MediaKind
	msg.CTAURL = req.CTAURL
	msg.CTAText = req.CTAText
	msg.Active = true
	msg.UpdatedBy = req.UpdatedBy

	if err := h.DB.Save(&msg).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not save message: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, msg)
}

// DeactivateMessage soft-deletes one content row.
func (h *MessageHandler) DeactivateMessage(c *gin.Context) {
	res := h.DB.Model(&models.RestaurantMessage{}).
		Where("id = ?", c.Param("id")).
		Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
