package main

import (
	"github.com/rs/zerolog/log"

	"github.com/bizsuite-hq/bizsuite/internal/api"
	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/config"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/httpclient"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/logger"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.App.Environment, cfg.App.Debug)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Msg("Starting API server")

	// Initialize stores
	settingsStore := store.New(cfg.Storage.SettingsPath(), models.DefaultSettings)
	webhookStore := store.New(cfg.Storage.WebhooksPath(), models.DefaultWebhooks)
	formStore := store.New(cfg.Storage.FormsPath(), models.DefaultForms)
	processStore := store.New(cfg.Storage.ModelsPath(), models.DefaultModels)

	// Initialize services
	settingsSvc := services.NewSettingsService(settingsStore)
	if err := settingsSvc.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	if err := webhookStore.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load webhooks")
	}
	if err := formStore.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load forms")
	}
	if err := processStore.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load process models")
	}

	webhookSvc := services.NewWebhookService(webhookStore, settingsSvc, httpclient.Default())
	formSvc := services.NewFormService(formStore, webhookSvc)
	processSvc := services.NewProcessService(processStore, webhookSvc, formSvc)
	exportSvc := services.NewExportService(settingsStore, webhookStore, formStore, processStore)

	// Start server
	server := api.NewServer(cfg, &api.Services{
		Settings: settingsSvc,
		Webhook:  webhookSvc,
		Form:     formSvc,
		Process:  processSvc,
		Export:   exportSvc,
	})

	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
