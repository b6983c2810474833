// Package webhook handles inbound messages from the provider and runs
// the trigger → menu → review pipeline.
package webhook

import (
	"context"
	"net/http"

	"restobot/internal/bot"
	"restobot/internal/contacts"
	"restobot/internal/delivery"
	"restobot/internal/lang"
	"restobot/internal/messages"
	"restobot/internal/models"
	"restobot/internal/scheduler"
	pkgmodels "restobot/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// InteractionRecorder persists one row per matched trigger.
type InteractionRecorder interface {
	Record(ctx context.Context, interaction *models.Interaction) error
}

// InboundLogger mirrors delivery.OutboundLogger for received messages.
type InboundLogger interface {
	LogInbound(ctx context.Context, restaurantID uint, phone, body string)
}

type Handler struct {
	triggers     *bot.Resolver
	registry     *contacts.Registry
	resolver     *messages.Resolver
	dispatcher   *delivery.Dispatcher
	jobs         *scheduler.Service
	interactions InteractionRecorder
	inboundLog   InboundLogger
	restaurants  scheduler.RestaurantInfo
}

func NewHandler(
	triggers *bot.Resolver,
	registry *contacts.Registry,
	resolver *messages.Resolver,
	dispatcher *delivery.Dispatcher,
	jobs *scheduler.Service,
	interactions InteractionRecorder,
	inboundLog InboundLogger,
	restaurants scheduler.RestaurantInfo,
) *Handler {
	return &Handler{
		triggers:     triggers,
		registry:     registry,
		resolver:     resolver,
		dispatcher:   dispatcher,
		jobs:         jobs,
		interactions: interactions,
		inboundLog:   inboundLog,
		restaurants:  restaurants,
	}
}

const apologyBody = "Sorry, we couldn't process your message right now. Please try again in a few minutes."

// HandleMessage runs the inbound pipeline. An unmatched trigger is a
// silent no-op; gateway failures get the apology fallback in the HTTP
// reply so the conversation never hangs; only persistence failures
// surface as server errors.
func (h *Handler) HandleMessage(c *gin.Context) {
	var in pkgmodels.InboundMessage
	if err := c.ShouldBind(&in); err != nil {
		log.Warn().Err(err).Msg("malformed inbound webhook")
		c.Status(http.StatusBadRequest)
		return
	}
	ctx := c.Request.Context()

	cfg, matched, err := h.triggers.Resolve(ctx, in.Body)
	if err != nil {
		log.Error().Err(err).Msg("trigger lookup failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	if !matched {
		c.Status(http.StatusOK)
		return
	}
	log.Info().
		Str("trigger", cfg.TriggerPhrase).
		Uint("restaurant_id", cfg.RestaurantID).
		Msg("trigger matched")

	if h.inboundLog != nil {
		h.inboundLog.LogInbound(ctx, cfg.RestaurantID, in.From, in.Body)
	}

	language := lang.FromPhone(in.From)
	contact, err := h.registry.FindOrCreate(ctx, cfg.RestaurantID, in.From, in.ProfileName, language)
	if err != nil {
		log.Error().Err(err).Msg("contact upsert failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	if contact.Language != "" {
		language = contact.Language
	}

	interaction := &models.Interaction{
		RestaurantID:  cfg.RestaurantID,
		ContactID:     contact.ID,
		TriggerPhrase: cfg.TriggerPhrase,
		Body:          in.Body,
	}
	if err := h.interactions.Record(ctx, interaction); err != nil {
		log.Error().Err(err).Msg("recording interaction failed")
		c.Status(http.StatusInternalServerError)
		return
	}

	menu, err := h.resolver.Resolve(ctx, cfg.RestaurantID, models.MessageTypeMenu, language)
	if err != nil {
		log.Error().Err(err).Msg("menu resolution failed")
		c.Status(http.StatusInternalServerError)
		return
	}

	restaurantName, err := h.restaurants.NameOf(ctx, cfg.RestaurantID)
	if err != nil {
		log.Error().Err(err).Msg("restaurant lookup failed")
		c.Status(http.StatusInternalServerError)
		return
	}

	result := h.dispatcher.Deliver(ctx, cfg.RestaurantID, contact.Phone, menu, delivery.Variables{
		CustomerName:   contact.Name,
		RestaurantName: restaurantName,
	})
	if !result.Success {
		// The menu could not go out; answer the inbound message itself
		// with an apology so the customer is not left on silence. No
		// review follow-up is scheduled for a failed menu send.
		replyWith(c, apologyBody)
		return
	}

	// Review delay counts from the moment of menu delivery.
	review, err := h.resolver.Resolve(ctx, cfg.RestaurantID, models.MessageTypeReview, language)
	if err != nil {
		log.Error().Err(err).Msg("review resolution failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	if _, err := h.jobs.ScheduleReview(ctx, cfg, contact, interaction.ID, review); err != nil {
		log.Error().Err(err).Msg("scheduling review follow-up failed")
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}

// replyWith answers the webhook with provider markup carrying a direct
// text reply.
func replyWith(c *gin.Context, body string) {
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, "<Response><Message>%s</Message></Response>", body)
}
