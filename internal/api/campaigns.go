package api

import (
	"net/http"
	"strconv"
	"time"

	"restobot/internal/contacts"
	"restobot/internal/models"
	"restobot/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	DB       *gorm.DB
	Jobs     *scheduler.Service
	Contacts *contacts.GormRepository
}

func NewCampaignHandler(db *gorm.DB, jobs *scheduler.Service, contactRepo *contacts.GormRepository) *CampaignHandler {
	return &CampaignHandler{DB: db, Jobs: jobs, Contacts: contactRepo}
}

func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	var out []models.Campaign
	q := h.DB.Order("created_at DESC")
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	if err := q.Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

type campaignRequest struct {
	RestaurantID uint      `json:"restaurant_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	Body         string    `json:"body" binding:"required"`
	MediaURL     string    `json:"media_url"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

// CreateCampaign persists the campaign and schedules one job per
// consenting contact of the restaurant.
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign := models.Campaign{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Body:         req.Body,
		MediaURL:     req.MediaURL,
		ScheduledFor: req.ScheduledFor,
		Status:       models.CampaignStatusScheduled,
	}
	if err := h.DB.Create(&campaign).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dests, err := h.Contacts.ListConsenting(c.Request.Context(), req.RestaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	n, err := h.Jobs.ScheduleCampaign(c.Request.Context(), &campaign, dests)
	if err != nil {
		log.Error().Err(err).Uint("campaign_id", campaign.ID).Msg("partial campaign scheduling")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "scheduled": n})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"campaign": campaign, "scheduled": n})
}

// DeleteCampaign cancels the campaign and its pending jobs. The row is
// kept with a cancelled status.
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var campaign models.Campaign
	if err := h.DB.First(&campaign, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	cancelled, err := h.Jobs.CancelForCampaign(c.Request.Context(), campaign.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	campaign.Status = models.CampaignStatusCancelled
	if err := h.DB.Save(&campaign).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "jobs_cancelled": cancelled})
}
