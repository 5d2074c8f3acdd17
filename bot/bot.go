package bot

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"steward/bot/features/badge"
	"steward/bot/features/daily"
	"steward/bot/features/deletedata"
	"steward/bot/features/leaderboard"
	"steward/bot/features/link"
	"steward/bot/features/ping"
	"steward/bot/features/profile"
	"steward/bot/features/register"
	"steward/bot/features/send"
	"steward/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	XPPerMessage      int
	MaxLevel          int
	IgnoredChannelIDs []string
}

type Bot struct {
	config          Config
	session         *discordgo.Session
	userService     service.UserService
	levelingService service.LevelingService
	ignoredChannels map[string]struct{}

	registerFeature    *register.Feature
	profileFeature     *profile.Feature
	linkFeature        *link.Feature
	dailyFeature       *daily.Feature
	sendFeature        *send.Feature
	leaderboardFeature *leaderboard.Feature
	badgeFeature       *badge.Feature
	deleteDataFeature  *deletedata.Feature
	pingFeature        *ping.Feature
}

func New(config Config, notifier *DMNotifier, userService service.UserService, economyService service.EconomyService, badgeService service.BadgeService, linkService service.LinkService, levelingService service.LevelingService) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsGuildMembers | discordgo.IntentsMessageContent

	ignored := make(map[string]struct{}, len(config.IgnoredChannelIDs))
	for _, id := range config.IgnoredChannelIDs {
		ignored[id] = struct{}{}
	}

	bot := &Bot{
		config:          config,
		session:         dg,
		userService:     userService,
		levelingService: levelingService,
		ignoredChannels: ignored,

		registerFeature:    register.New(userService),
		profileFeature:     profile.New(userService, config.MaxLevel),
		linkFeature:        link.New(linkService, userService),
		dailyFeature:       daily.New(economyService, userService),
		sendFeature:        send.New(economyService, userService),
		leaderboardFeature: leaderboard.New(userService),
		badgeFeature:       badge.New(badgeService, userService),
		deleteDataFeature:  deletedata.New(userService),
		pingFeature:        ping.New(userService),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Passive XP and member lifecycle handlers
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleGuildMemberRemove)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	if notifier != nil {
		notifier.Bind(dg)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleMessageCreate grants passive XP for guild chatter. Bots, ignored
// channels and unregistered members are skipped silently.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if _, skip := b.ignoredChannels[m.ChannelID]; skip {
		return
	}

	ctx := context.Background()

	user, err := b.userService.GetByDiscordID(ctx, m.Author.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotRegistered) {
			return
		}
		log.Errorf("Error resolving user %s for message XP: %v", m.Author.ID, err)
		return
	}

	var roleIDs []string
	if m.Member != nil {
		roleIDs = m.Member.Roles
	}

	grant, err := b.levelingService.GrantXP(ctx, user.ID, b.config.XPPerMessage, roleIDs)
	if err != nil {
		log.Errorf("Error granting message XP to user %d: %v", user.ID, err)
		return
	}

	if grant.LeveledUp() {
		embed := &discordgo.MessageEmbed{
			Title:       "🎉 Level Up!",
			Description: fmt.Sprintf("<@%s> reached **level %d**!", m.Author.ID, grant.NewLevel),
			Color:       0xFEE75C,
		}
		if grant.BonusPaid > 0 {
			embed.Description += fmt.Sprintf(" They earned a **%d$** bonus.", grant.BonusPaid)
		}
		if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
			log.Errorf("Error announcing level up for user %d: %v", user.ID, err)
		}
	}
}

// handleGuildMemberRemove deletes a departing member's data
func (b *Bot) handleGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil {
		return
	}

	ctx := context.Background()

	err := b.userService.Delete(ctx, m.User.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotRegistered) {
			return
		}
		log.Errorf("Error deleting data for departed member %s: %v", m.User.ID, err)
		return
	}

	log.Infof("Deleted data for departed member %s", m.User.ID)
}
