// Package messages locates the outbound content for a (restaurant,
// type, language) key through a three-tier fallback cascade, so a
// matched conversation never dead-ends on missing content.
package messages

import (
	"context"
	"fmt"
	"strings"

	"restobot/internal/models"

	"github.com/rs/zerolog/log"
)

// Content is the uniform resolver output, whatever tier produced it.
// MediaURL and CTAURL are never both populated from a template row;
// the dispatcher may still append a CTA as inline text.
type Content struct {
	Body      string
	MediaURL  string
	MediaKind string
	CTAURL    string
	CTAText   string
	Source    string // current, legacy, default
}

// MessageRepository reads the current-system content store. Lookups
// return nil on a miss, error only on store failure.
type MessageRepository interface {
	FindActive(ctx context.Context, restaurantID uint, msgType, language string) (*models.RestaurantMessage, error)
	FindActiveAnyLanguage(ctx context.Context, restaurantID uint, msgType string) (*models.RestaurantMessage, error)
}

// LegacyRepository reads approved legacy templates, the second tier.
type LegacyRepository interface {
	FindApproved(ctx context.Context, restaurantID uint, language string) ([]models.LegacyTemplate, error)
	FindApprovedAnyLanguage(ctx context.Context, restaurantID uint) ([]models.LegacyTemplate, error)
}

// RestaurantLookup supplies the per-restaurant default language used by
// the language fallback order.
type RestaurantLookup interface {
	DefaultLanguage(ctx context.Context, restaurantID uint) (string, error)
}

type tier func(ctx context.Context, restaurantID uint, msgType, language string) (*Content, error)

type Resolver struct {
	tiers []tier
}

// NewResolver wires the cascade as an ordered strategy list; each tier
// short-circuits on a hit.
func NewResolver(msgs MessageRepository, legacy LegacyRepository, restaurants RestaurantLookup) *Resolver {
	r := &Resolver{}
	r.tiers = []tier{
		currentTier(msgs, restaurants),
		legacyTier(legacy, restaurants),
		defaultTier(),
	}
	return r
}

// Resolve walks the tiers in order. It only fails on a store error;
// the last tier is total.
func (r *Resolver) Resolve(ctx context.Context, restaurantID uint, msgType, language string) (*Content, error) {
	for _, t := range r.tiers {
		content, err := t(ctx, restaurantID, msgType, language)
		if err != nil {
			return nil, err
		}
		if content != nil {
			return content, nil
		}
	}
	// Unreachable: the default tier always answers.
	return nil, fmt.Errorf("no content for restaurant %d type %s", restaurantID, msgType)
}

// currentTier: exact language, then the restaurant default language,
// then any active message of the type.
func currentTier(msgs MessageRepository, restaurants RestaurantLookup) tier {
	return func(ctx context.Context, restaurantID uint, msgType, language string) (*Content, error) {
		msg, err := msgs.FindActive(ctx, restaurantID, msgType, language)
		if err != nil {
			return nil, fmt.Errorf("finding message: %w", err)
		}
		if msg == nil {
			defaultLang, err := restaurants.DefaultLanguage(ctx, restaurantID)
			if err != nil {
				return nil, err
			}
			if defaultLang != "" && defaultLang != language {
				if msg, err = msgs.FindActive(ctx, restaurantID, msgType, defaultLang); err != nil {
					return nil, err
				}
			}
		}
		if msg == nil {
			if msg, err = msgs.FindActiveAnyLanguage(ctx, restaurantID, msgType); err != nil {
				return nil, err
			}
		}
		if msg == nil {
			return nil, nil
		}
		return fromMessage(msg), nil
	}
}

// legacyTier: approved templates of the matching semantic kind, with
// the same language fallback order as the current tier.
func legacyTier(legacy LegacyRepository, restaurants RestaurantLookup) tier {
	return func(ctx context.Context, restaurantID uint, msgType, language string) (*Content, error) {
		tmpls, err := legacy.FindApproved(ctx, restaurantID, language)
		if err != nil {
			return nil, fmt.Errorf("finding legacy templates: %w", err)
		}
		if t := pickLegacy(tmpls, msgType); t != nil {
			return fromLegacy(t), nil
		}

		defaultLang, err := restaurants.DefaultLanguage(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		if defaultLang != "" && defaultLang != language {
			tmpls, err = legacy.FindApproved(ctx, restaurantID, defaultLang)
			if err != nil {
				return nil, err
			}
			if t := pickLegacy(tmpls, msgType); t != nil {
				return fromLegacy(t), nil
			}
		}

		tmpls, err = legacy.FindApprovedAnyLanguage(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		if t := pickLegacy(tmpls, msgType); t != nil {
			return fromLegacy(t), nil
		}
		return nil, nil
	}
}

// defaultTier synthesizes a bare greeting so the conversation never
// goes unanswered, even with zero configured content.
func defaultTier() tier {
	return func(_ context.Context, restaurantID uint, msgType, language string) (*Content, error) {
		log.Warn().
			Uint("restaurant_id", restaurantID).
			Str("type", msgType).
			Str("language", language).
			Msg("no configured content, falling back to default greeting")
		return &Content{Body: defaultBody(msgType, language), Source: "default"}, nil
	}
}

func fromMessage(m *models.RestaurantMessage) *Content {
	c := &Content{
		Body:      m.Body,
		MediaURL:  m.MediaURL,
		MediaKind: m.MediaKind,
		CTAURL:    m.CTAURL,
		CTAText:   m.CTAText,
		Source:    "current",
	}
	// Media wins if a row somehow carries both slots.
	if c.MediaURL != "" {
		c.CTAURL = ""
	}
	return c
}

func fromLegacy(t *models.LegacyTemplate) *Content {
	return &Content{Body: t.Body, MediaURL: t.MediaURL, Source: "legacy"}
}

// pickLegacy infers menu-like vs review-like from the template kind or
// name, since the legacy system predates explicit message types.
func pickLegacy(tmpls []models.LegacyTemplate, msgType string) *models.LegacyTemplate {
	var keywords []string
	switch msgType {
	case models.MessageTypeReview, models.MessageTypeFollowup:
		keywords = []string{"review", "feedback", "rating"}
	default:
		keywords = []string{"menu", "welcome", "greeting"}
	}

	for i := range tmpls {
		hay := strings.ToLower(tmpls[i].Kind + " " + tmpls[i].Name)
		for _, kw := range keywords {
			if strings.Contains(hay, kw) {
				return &tmpls[i]
			}
		}
	}
	return nil
}

var defaultGreetings = map[string]string{
	"it": "Ciao {{customer_name}}! Grazie per averci scritto.",
	"es": "¡Hola {{customer_name}}! Gracias por escribirnos.",
	"fr": "Bonjour {{customer_name}} ! Merci de nous avoir écrit.",
	"de": "Hallo {{customer_name}}! Danke für deine Nachricht.",
	"pt": "Olá {{customer_name}}! Obrigado pela sua mensagem.",
	"en": "Hi {{customer_name}}! Thanks for reaching out.",
}

var defaultReviews = map[string]string{
	"it": "Ciao {{customer_name}}, com'è andata da {{restaurant_name}}? Ci farebbe piacere una tua recensione!",
	"es": "Hola {{customer_name}}, ¿qué tal en {{restaurant_name}}? ¡Nos encantaría tu reseña!",
	"en": "Hi {{customer_name}}, how was {{restaurant_name}}? We'd love to hear your review!",
}

func defaultBody(msgType, language string) string {
	table := defaultGreetings
	if msgType == models.MessageTypeReview {
		table = defaultReviews
	}
	if body, ok := table[language]; ok {
		return body
	}
	return table["en"]
}
