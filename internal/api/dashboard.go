package api

import (
	"net/http"

	"restobot/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler serves the operator views: the message log and the
// recent trigger interactions.
type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

func (h *DashboardHandler) GetDeliveryLog(c *gin.Context) {
	var out []models.DeliveryLog
	q := h.DB.Order("created_at DESC").Limit(200)
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	if err := q.Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) GetInteractions(c *gin.Context) {
	var out []models.Interaction
	q := h.DB.Order("created_at DESC").Limit(200)
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	if err := q.Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
