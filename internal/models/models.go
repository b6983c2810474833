package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Restaurant owns every other record in the system.
type Restaurant struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	DefaultLanguage string    `gorm:"type:varchar(10);default:'en'" json:"default_language"`
	Active          bool      `gorm:"default:true" json:"active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

// BotConfig holds the per-restaurant trigger word and follow-up settings.
// Trigger phrases are unique case-insensitively among active configs;
// enforced at write time in the bot service, not by the schema, since
// deactivated configs may keep their old phrase.
type BotConfig struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RestaurantID       uint      `gorm:"index;not null" json:"restaurant_id"`
	TriggerPhrase      string    `gorm:"type:varchar(255);not null" json:"trigger_phrase"`
	Active             bool      `gorm:"default:true" json:"active"`
	ReviewDelayMinutes int       `gorm:"default:120" json:"review_delay_minutes"`
	HoursEnabled       bool      `gorm:"default:false" json:"hours_enabled"`
	HoursStart         int       `gorm:"default:9" json:"hours_start"`
	HoursEnd           int       `gorm:"default:22" json:"hours_end"`
	Timezone           string    `gorm:"type:varchar(64);default:'Europe/Rome'" json:"timezone"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BotConfig) TableName() string {
	return "bot_configs"
}

// Message types understood by the resolver and scheduler.
const (
	MessageTypeMenu     = "menu"
	MessageTypeReview   = "review"
	MessageTypeCampaign = "campaign"
	MessageTypeFollowup = "followup"
)

// RestaurantMessage is the canonical outbound content unit, keyed by
// (restaurant, type, language). At most one active row per key.
type RestaurantMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;uniqueIndex:idx_restaurant_type_lang" json:"restaurant_id"`
	Type         string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_restaurant_type_lang" json:"type"`
	Language     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_restaurant_type_lang" json:"language"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	MediaURL     string    `gorm:"type:text" json:"media_url"`
	MediaKind    string    `gorm:"type:varchar(20)" json:"media_kind"`
	CTAURL       string    `gorm:"type:text" json:"cta_url"`
	CTAText      string    `gorm:"type:varchar(255)" json:"cta_text"`
	Active       bool      `gorm:"default:true" json:"active"`
	UpdatedBy    string    `gorm:"type:varchar(50)" json:"updated_by"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RestaurantMessage) TableName() string {
	return "restaurant_messages"
}

// LegacyTemplate is the old per-language template system, kept as the
// second resolution tier for restaurants that never migrated.
type LegacyTemplate struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"index;not null" json:"restaurant_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Language     string    `gorm:"type:varchar(10)" json:"language"`
	Kind         string    `gorm:"type:varchar(50)" json:"kind"`
	Status       string    `gorm:"type:varchar(50)" json:"status"` // APPROVED, REJECTED, PENDING
	Body         string    `gorm:"type:text" json:"body"`
	MediaURL     string    `gorm:"type:text" json:"media_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LegacyTemplate) TableName() string {
	return "legacy_templates"
}

// WhatsAppContact is one customer of one restaurant, keyed by the
// SHA-256 of the digits-only phone so formatting variants collapse.
type WhatsAppContact struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RestaurantID      uint      `gorm:"not null;uniqueIndex:idx_restaurant_phone_hash" json:"restaurant_id"`
	PhoneHash         string    `gorm:"type:char(64);not null;uniqueIndex:idx_restaurant_phone_hash" json:"phone_hash"`
	Phone             string    `gorm:"type:varchar(30);not null" json:"phone"`
	Name              string    `gorm:"type:varchar(255)" json:"name"`
	Language          string    `gorm:"type:varchar(10)" json:"language"`
	InteractionCount  int       `gorm:"default:0" json:"interaction_count"`
	FirstContactAt    time.Time `json:"first_contact_at"`
	LastContactAt     time.Time `json:"last_contact_at"`
	Consent           bool      `gorm:"default:true" json:"consent"`
	ConsentProvenance string    `gorm:"type:varchar(50)" json:"consent_provenance"`
	Tags              string    `gorm:"type:text;default:'[]'" json:"tags"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WhatsAppContact) TableName() string {
	return "whatsapp_contacts"
}

// Interaction records one matched inbound trigger.
type Interaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RestaurantID  uint      `gorm:"index;not null" json:"restaurant_id"`
	ContactID     uint      `gorm:"index" json:"contact_id"`
	TriggerPhrase string    `gorm:"type:varchar(255)" json:"trigger_phrase"`
	Body          string    `gorm:"type:text" json:"body"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Interaction) TableName() string {
	return "interactions"
}

type CampaignStatus string

const (
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusCancelled CampaignStatus = "cancelled"
	CampaignStatusDone      CampaignStatus = "done"
)

// Campaign is a one-shot broadcast to consenting contacts.
type Campaign struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RestaurantID uint           `gorm:"index;not null" json:"restaurant_id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Body         string         `gorm:"type:text;not null" json:"body"`
	MediaURL     string         `gorm:"type:text" json:"media_url"`
	ScheduledFor time.Time      `gorm:"not null" json:"scheduled_for"`
	Status       CampaignStatus `gorm:"type:varchar(20);default:'scheduled'" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusSent       JobStatus = "sent"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// ScheduledMessage is a durable deferred-delivery job. The body is
// copied at schedule time; edits to the source content never change an
// already-scheduled job. Rows are never deleted: cancellation is a
// status transition.
type ScheduledMessage struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID  uint       `gorm:"index;not null" json:"restaurant_id"`
	InteractionID *uint      `gorm:"index" json:"interaction_id,omitempty"`
	CampaignID    *uint      `gorm:"index" json:"campaign_id,omitempty"`
	Phone         string     `gorm:"type:varchar(30);not null" json:"phone"`
	CustomerName  string     `gorm:"type:varchar(255)" json:"customer_name"`
	Type          string     `gorm:"type:varchar(20);not null" json:"type"`
	Body          string     `gorm:"type:text" json:"body"`
	MediaURL      string     `gorm:"type:text" json:"media_url"`
	// Legacy jobs carry a template reference instead of a resolved body.
	LegacyTemplateID *uint      `json:"legacy_template_id,omitempty"`
	LegacyVariables  string     `gorm:"type:text" json:"legacy_variables,omitempty"`
	ScheduledFor     time.Time  `gorm:"index;not null" json:"scheduled_for"`
	Status           JobStatus  `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	LockedUntil      *time.Time `json:"locked_until,omitempty"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	DeliveryID       string     `gorm:"type:varchar(100)" json:"delivery_id"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message"`
	RetryCount       int        `gorm:"default:0" json:"retry_count"`
	MaxRetries       int        `gorm:"default:3" json:"max_retries"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ScheduledMessage) TableName() string {
	return "scheduled_messages"
}

func (m *ScheduledMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DeliveryLog keeps one row per inbound or outbound message for the
// operator dashboard.
type DeliveryLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"index" json:"restaurant_id"`
	Phone        string    `gorm:"type:varchar(30)" json:"phone"`
	Direction    string    `gorm:"type:varchar(10)" json:"direction"` // in, out
	Body         string    `gorm:"type:text" json:"body"`
	Status       string    `gorm:"type:varchar(20)" json:"status"`
	Error        string    `gorm:"type:text" json:"error"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DeliveryLog) TableName() string {
	return "delivery_logs"
}
