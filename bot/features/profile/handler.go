package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/models"
	"steward/service"
)

func (f *Feature) handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if _, ok := common.RequireUser(ctx, f.userService, s, i); !ok {
		return
	}

	// Default to the invoker; an explicit user option inspects someone else
	targetID := i.Member.User.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			targetID = opt.UserValue(s).ID
		}
	}

	p, err := f.userService.Profile(ctx, targetID)
	if err != nil {
		if errors.Is(err, service.ErrNotRegistered) {
			common.RespondWithError(s, i, "That member is not registered.")
			return
		}
		log.Errorf("Error loading profile for %s: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to load profile. Please try again.")
		return
	}

	embed := f.buildProfileEmbed(s, i.GuildID, targetID, p)
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to profile command: %v", err)
	}
}

func (f *Feature) buildProfileEmbed(s *discordgo.Session, guildID, discordID string, p *models.Profile) *discordgo.MessageEmbed {
	displayName := common.GetDisplayName(s, guildID, discordID)

	badgeLine := "None yet"
	if len(p.Badges) > 0 {
		names := make([]string, len(p.Badges))
		for idx, badge := range p.Badges {
			names[idx] = fmt.Sprintf("🏅 %s", badge.Name)
		}
		badgeLine = strings.Join(names, "\n")
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's Profile", displayName),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Balance",
				Value:  fmt.Sprintf("**%s$**", common.FormatBalance(p.User.Balance)),
				Inline: true,
			},
			{
				Name:   "Level",
				Value:  fmt.Sprintf("**%d**", p.User.Level),
				Inline: true,
			},
			{
				Name:  "Progress",
				Value: common.FormatXPProgress(p.User.XP, p.User.Level, f.maxLevel),
			},
			{
				Name:  "Badges",
				Value: badgeLine,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Member since %s", p.User.CreatedAt.Format("Jan 2, 2006")),
		},
	}
}
