package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"whatsbot/bot"
	"whatsbot/bot/features/admin"
	"whatsbot/bot/features/calc"
	"whatsbot/bot/features/economy"
	"whatsbot/bot/features/help"
	"whatsbot/bot/features/joke"
	"whatsbot/bot/features/ping"
	"whatsbot/bot/middleware"
	"whatsbot/config"
	"whatsbot/database"
	"whatsbot/events"
	"whatsbot/health"
	"whatsbot/jobs"
	"whatsbot/repository"
	"whatsbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.Info("Starting whatsbot...")

	// Database connection and schema
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.MigrateUpWithURL(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database ready")

	// Event bus with the audit subscriber attached
	eventBus := events.NewBus()
	registerAuditSubscribers(eventBus)

	// Unit of work factory and services
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	settingsService := service.NewSettingsService(uowFactory)
	if err := settingsService.Load(ctx); err != nil {
		return fmt.Errorf("failed to load economy settings: %w", err)
	}
	locks := service.NewLockManager()
	accountService := service.NewAccountService(uowFactory, settingsService)
	economyService := service.NewEconomyService(uowFactory, locks, settingsService, cfg)

	// Command surface
	registry := bot.NewRegistry()
	economy.New(accountService, economyService, settingsService).Register(registry)
	admin.New(cfg, economyService, settingsService).Register(registry)
	ping.New().Register(registry)
	help.New(cfg).Register(registry)
	calc.New().Register(registry)
	joke.New().Register(registry)
	log.WithField("commands", len(registry.Commands())).Info("Command registry built")

	// WhatsApp gateway
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	gateway, err := bot.New(ctx, cfg, registry, accountService, limiter)
	if err != nil {
		return fmt.Errorf("failed to initialize WhatsApp gateway: %w", err)
	}
	if err := gateway.Start(ctx); err != nil {
		return fmt.Errorf("failed to start WhatsApp gateway: %w", err)
	}
	log.Info("WhatsApp gateway connected")

	// Background maintenance and the health endpoint
	scheduler := jobs.NewScheduler(locks, limiter, settingsService, uowFactory, cfg.LockStaleAfter)
	scheduler.Start(ctx)

	healthServer := health.NewServer(cfg.HealthAddr, db)
	healthServer.Start()

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	gateway.Stop()
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Health server shutdown failed")
	}

	db.Close()
	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

// registerAuditSubscribers logs every committed balance movement and
// account creation, giving operators a trail independent of the ledger.
func registerAuditSubscribers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"userID":     e.UserID,
			"type":       e.TransactionType,
			"change":     e.ChangeAmount,
			"oldBalance": e.OldBalance,
			"newBalance": e.NewBalance,
		}).Info("Balance changed")
	})
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.AccountCreatedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"userID":          e.UserID,
			"startingBalance": e.StartingBalance,
		}).Info("Account created")
	})
}
