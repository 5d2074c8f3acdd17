package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"steward/bot"
	"steward/config"
	"steward/database"
	"steward/repository"
	"steward/service"
	"steward/wsbridge"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting steward bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db)
	log.Println("Unit of work factory initialized successfully")

	// Initialize services
	log.Println("Initializing services...")
	levelingConfig := service.LevelingConfig{
		XPPerMessage:    cfg.XPPerMessage,
		MaxLevel:        cfg.MaxLevel,
		LevelUpBonus:    cfg.LevelUpBonus,
		RoleMultipliers: cfg.RoleMultipliers,
	}
	economyConfig := service.EconomyConfig{
		DailyMoney: cfg.DailyMoney,
		DailyXP:    cfg.DailyXP,
	}

	registry := service.NewLinkCodeRegistry(cfg.LinkCodeTTL)
	notifier := bot.NewNotifier()

	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	levelingService := service.NewLevelingService(uowFactory, levelingConfig)
	economyService := service.NewEconomyService(uowFactory, economyConfig, levelingConfig)
	badgeService := service.NewBadgeService(uowFactory)
	mergeService := service.NewMergeService(uowFactory)
	linkService := service.NewLinkService(registry, uowFactory, mergeService, notifier)
	registry.SetExpiryHandler(notifier.NotifyCodeExpired)
	log.Println("Services initialized successfully")

	// Initialize WebSocket bridge
	log.Println("Starting WebSocket bridge...")
	bridgeHandler := wsbridge.NewHandler(linkService, userService, levelingService)
	bridge := wsbridge.NewServer(cfg.WSListenAddr, bridgeHandler)
	bridgeErr := make(chan error, 1)
	go func() {
		bridgeErr <- bridge.ListenAndServe()
	}()
	log.Printf("WebSocket bridge listening on %s", cfg.WSListenAddr)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:             cfg.DiscordToken,
		GuildID:           cfg.DiscordGuildID,
		XPPerMessage:      cfg.XPPerMessage,
		MaxLevel:          cfg.MaxLevel,
		IgnoredChannelIDs: cfg.IgnoredChannelIDs,
	}
	discordBot, err := bot.New(botConfig, notifier, userService, economyService, badgeService, linkService, levelingService)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation or bridge failure
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-bridgeErr:
		if err != nil {
			log.Printf("WebSocket bridge failed: %v", err)
		}
	}

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop the WebSocket bridge
	if err := bridge.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down WebSocket bridge: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
