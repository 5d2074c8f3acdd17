package deletedata

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/service"
)

func (f *Feature) handleDeleteData(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, ok := common.RequireUser(ctx, f.userService, s, i)
	if !ok {
		return
	}
	if !common.RequireAdmin(user, s, i) {
		return
	}

	target := i.Member.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}

	if err := f.userService.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, service.ErrNotRegistered) {
			common.RespondWithError(s, i, "That member has no stored data.")
			return
		}
		log.Errorf("Error deleting data for %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to delete the data. Please try again.")
		return
	}

	message := fmt.Sprintf("All stored data for <@%s> has been deleted.", target.ID)
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to deletedata command: %v", err)
	}
}
