package main

import (
	"context"
	"os/signal"
	"syscall"

	"restobot/internal/api"
	"restobot/internal/bot"
	"restobot/internal/config"
	"restobot/internal/contacts"
	"restobot/internal/database"
	"restobot/internal/delivery"
	"restobot/internal/gateway"
	"restobot/internal/logger"
	"restobot/internal/messages"
	"restobot/internal/scheduler"
	"restobot/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()
	cfg := config.LoadConfig()
	database.Init(cfg.DatabaseURL)
	db := database.DB

	sender, err := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayAccountSID, cfg.GatewayAuthToken, cfg.GatewayFrom, cfg.GatewayTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("gateway client configuration invalid")
	}

	contactRepo := contacts.NewGormRepository(db)
	registry := contacts.NewRegistry(contactRepo)
	botRepo := bot.NewGormRepository(db)
	triggers := bot.NewResolver(botRepo)
	resolver := messages.NewResolver(
		messages.NewGormMessageRepository(db),
		messages.NewGormLegacyRepository(db),
		messages.NewGormRestaurantLookup(db),
	)
	outboundLog := delivery.NewGormOutboundLogger(db)
	dispatcher := delivery.NewDispatcher(sender, outboundLog)
	restaurants := scheduler.NewGormRestaurantInfo(db)
	jobs := scheduler.NewService(
		scheduler.NewGormJobStore(db),
		dispatcher,
		resolver,
		scheduler.NewGormConfigLookup(db),
		restaurants,
	)
	botService := bot.NewService(botRepo, jobs)

	webhookHandler := webhook.NewHandler(
		triggers, registry, resolver, dispatcher, jobs,
		webhook.NewGormInteractionRecorder(db), outboundLog, restaurants,
	)
	jobHandler := api.NewJobHandler(jobs)
	botConfigHandler := api.NewBotConfigHandler(botService, db)
	messageHandler := api.NewMessageHandler(db)
	contactHandler := api.NewContactHandler(db)
	campaignHandler := api.NewCampaignHandler(db, jobs, contactRepo)
	dashboardHandler := api.NewDashboardHandler(db)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Webhook Routes
	r.POST("/webhook", webhookHandler.HandleMessage)

	apiGroup := r.Group("/api")
	{
		// Scheduling query surface
		apiGroup.GET("/jobs/due", jobHandler.GetDueJobs)
		apiGroup.GET("/jobs/:id", jobHandler.GetJob)
		apiGroup.POST("/jobs/:id/cancel", jobHandler.CancelJob)

		// Bot configuration
		apiGroup.GET("/bots", botConfigHandler.GetConfigs)
		apiGroup.POST("/bots", botConfigHandler.CreateConfig)
		apiGroup.PUT("/bots/:id", botConfigHandler.UpdateConfig)
		apiGroup.POST("/bots/:id/deactivate", botConfigHandler.DeactivateConfig)

		// Content
		apiGroup.GET("/messages", messageHandler.GetMessages)
		apiGroup.POST("/messages", messageHandler.UpsertMessage)
		apiGroup.POST("/messages/:id/deactivate", messageHandler.DeactivateMessage)

		// CRM
		apiGroup.GET("/contacts", contactHandler.GetContacts)
		apiGroup.PUT("/contacts/:id/consent", contactHandler.UpdateConsent)
		apiGroup.GET("/contacts/export", contactHandler.ExportContacts)

		// Campaigns
		apiGroup.GET("/campaigns", campaignHandler.GetCampaigns)
		apiGroup.POST("/campaigns", campaignHandler.CreateCampaign)
		apiGroup.DELETE("/campaigns/:id", campaignHandler.DeleteCampaign)

		// Dashboard
		apiGroup.GET("/deliveries", dashboardHandler.GetDeliveryLog)
		apiGroup.GET("/interactions", dashboardHandler.GetInteractions)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := scheduler.NewPoller(jobs, cfg.PollInterval, cfg.PollBatch, cfg.PollWorkers)
	go poller.Run(ctx)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
