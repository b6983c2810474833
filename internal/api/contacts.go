package api

import (
	"fmt"
	"net/http"
	"strings"

	"restobot/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContactHandler struct {
	DB *gorm.DB
}

func NewContactHandler(db *gorm.DB) *ContactHandler {
	return &ContactHandler{DB: db}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	var out []models.WhatsAppContact
	q := h.DB.Order("last_contact_at DESC")
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	if err := q.Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out == nil {
		out = []models.WhatsAppContact{}
	}
	c.JSON(http.StatusOK, out)
}

type consentRequest struct {
	Consent    bool   `json:"consent"`
	Provenance string `json:"provenance" binding:"required"`
}

// UpdateConsent is the only consent writer besides first contact; the
// provenance of the change is mandatory.
func (h *ContactHandler) UpdateConsent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.DB.Model(&models.WhatsAppContact{}).
		Where("id = ?", c.Param("id")).
		Updates(map[string]interface{}{
			"consent":            req.Consent,
			"consent_provenance": req.Provenance,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *ContactHandler) ExportContacts(c *gin.Context) {
	var out []models.WhatsAppContact
	q := h.DB.Order("last_contact_at DESC")
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	if err := q.Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var b strings.Builder
	b.WriteString("Phone,Name,Language,Interactions,Consent,Last Contact\n")
	for _, contact := range out {
		b.WriteString(fmt.Sprintf("%s,%s,%s,%d,%t,%s\n",
			contact.Phone, contact.Name, contact.Language,
			contact.InteractionCount, contact.Consent,
			contact.LastContactAt.Format("2006-01-02 15:04")))
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=contacts.csv")
	c.String(http.StatusOK, b.String())
}
