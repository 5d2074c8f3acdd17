package link

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/service"
)

func (f *Feature) handleLink(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if _, ok := common.RequireUser(ctx, f.userService, s, i); !ok {
		return
	}

	ticket, err := f.linkService.RequestLink(ctx, i.Member.User.ID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyPending) {
			common.RespondWithError(s, i, "You already have a pending link code. Wait for it to expire before requesting another.")
			return
		}
		log.Errorf("Error issuing link code for %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to issue a link code. Please try again.")
		return
	}

	// The code is a credential; only the requester may see it
	embed := &discordgo.MessageEmbed{
		Title:       "Account Link Code",
		Description: fmt.Sprintf("Enter this code in-game to link your accounts:\n```%s```", ticket.Code),
		Color:       0x57F287,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Expires",
				Value: common.FormatDiscordTimestamp(ticket.ExpiresAt, "R"),
			},
		},
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Error responding to link command: %v", err)
	}
}
