// Package main runs the lead relay HTTP server. It accepts call-center
// webhook deliveries, maps them into CRM lead fields and forwards them to
// a Bitrix24 portal.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"bitrix-lead-relay/internal/cache"
	"bitrix-lead-relay/internal/config"
	"bitrix-lead-relay/internal/handlers"
	"bitrix-lead-relay/internal/mapping"
	"bitrix-lead-relay/internal/middleware"
	"bitrix-lead-relay/internal/services/bitrix"
	"bitrix-lead-relay/internal/utils"
)

func main() {
	// Load config first: the logger needs the level and stage from it.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel, cfg.Stage); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	logger := utils.GetLogger()
	for _, warning := range cfg.StartupWarnings() {
		logger.Warn(warning)
	}

	// Mapping table: the built-in lead layout unless a file overrides it.
	table := mapping.LeadTable()
	if cfg.MappingFile != "" {
		loaded, err := mapping.LoadTable(cfg.MappingFile, mapping.DefaultRegistry())
		if err != nil {
			logger.Fatal("Failed to load mapping table",
				utils.String("file", cfg.MappingFile),
				utils.Error(err))
		}
		table = loaded
		logger.Info("Loaded mapping table",
			utils.String("file", cfg.MappingFile),
			utils.Int("fields", len(table)))
	}

	crm := bitrix.NewClient(cfg.BitrixWebhookURL, cfg.UpstreamTimeout)

	var guard *cache.Guard
	if cfg.DedupTTL > 0 {
		guard = cache.NewGuard(cfg.DedupTTL, cfg.DedupTTL)
		logger.Info("Duplicate delivery guard enabled", utils.Duration("ttl", cfg.DedupTTL))
	}

	webhook := handlers.NewWebhookHandler(table, crm, cfg.WebhookSecret, guard)
	health := handlers.NewHealthHandler(cfg.ServiceVersion, cfg.Stage, cfg.BitrixWebhookURL != "")

	// Setup routes
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		logger.Info("Rate limiting enabled",
			utils.Int("rps", cfg.RateLimitRPS),
			utils.Int("burst", cfg.RateLimitBurst))
	}

	r.Get("/health", health.Handle)
	r.Post("/webhook", webhook.Handle)

	// The unauthenticated test route is for development only and is never
	// mounted in production.
	if !cfg.IsProduction() {
		r.Post("/test/bitrix/lead", webhook.HandleTest)
	}

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(r)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	logger.Info("Starting lead relay server",
		utils.String("addr", addr),
		utils.String("stage", cfg.Stage),
		utils.String("version", cfg.ServiceVersion))

	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", utils.Error(err))
	}
}
