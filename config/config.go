package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// WebSocket bridge configuration
	WSListenAddr string

	// Account linking
	LinkCodeTTL time.Duration

	// Leveling configuration
	XPPerMessage      int
	MaxLevel          int
	LevelUpBonus      int64
	IgnoredChannelIDs []string
	RoleMultipliers   map[string]float64 // role ID -> XP multiplier

	// Economy configuration
	StartingBalance int64
	DailyMoney      int64
	DailyXP         int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// WebSocket bridge
		WSListenAddr: os.Getenv("WS_LISTEN_ADDR"),

		// Defaults
		LinkCodeTTL:     300 * time.Second,
		XPPerMessage:    1,
		MaxLevel:        50,
		LevelUpBonus:    25,
		StartingBalance: 0,
		DailyMoney:      5,
		DailyXP:         10,
		RoleMultipliers: make(map[string]float64),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if ttl := os.Getenv("LINK_CODE_TTL_SECONDS"); ttl != "" {
		if parsedTTL, err := strconv.Atoi(ttl); err == nil && parsedTTL > 0 {
			config.LinkCodeTTL = time.Duration(parsedTTL) * time.Second
		}
	}
	if xp := os.Getenv("XP_PER_MESSAGE"); xp != "" {
		if parsedXP, err := strconv.Atoi(xp); err == nil {
			config.XPPerMessage = parsedXP
		}
	}
	if level := os.Getenv("MAX_LEVEL"); level != "" {
		if parsedLevel, err := strconv.Atoi(level); err == nil {
			config.MaxLevel = parsedLevel
		}
	}
	if bonus := os.Getenv("LEVEL_UP_BONUS"); bonus != "" {
		if parsedBonus, err := strconv.ParseInt(bonus, 10, 64); err == nil {
			config.LevelUpBonus = parsedBonus
		}
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if money := os.Getenv("DAILY_MONEY"); money != "" {
		if parsedMoney, err := strconv.ParseInt(money, 10, 64); err == nil {
			config.DailyMoney = parsedMoney
		}
	}
	if xp := os.Getenv("DAILY_XP"); xp != "" {
		if parsedXP, err := strconv.Atoi(xp); err == nil {
			config.DailyXP = parsedXP
		}
	}

	// Parse ignored channel IDs
	if channels := os.Getenv("IGNORED_CHANNEL_IDS"); channels != "" {
		for _, id := range strings.Split(channels, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				config.IgnoredChannelIDs = append(config.IgnoredChannelIDs, id)
			}
		}
	}

	// Parse role multipliers in "roleID:multiplier,roleID:multiplier" form
	if multipliers := os.Getenv("XP_ROLE_MULTIPLIERS"); multipliers != "" {
		for _, pair := range strings.Split(multipliers, ",") {
			parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
			if len(parts) != 2 {
				continue
			}
			if multiplier, err := strconv.ParseFloat(parts[1], 64); err == nil && multiplier > 0 {
				config.RoleMultipliers[parts[0]] = multiplier
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.WSListenAddr == "" {
		config.WSListenAddr = ":8080"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
