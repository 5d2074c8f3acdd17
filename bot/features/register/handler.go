package register

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/service"
)

func (f *Feature) handleRegister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, err := f.userService.Register(ctx, i.Member.User.ID, i.Member.User.Username)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRegistered) {
			common.RespondWithError(s, i, "You are already registered.")
			return
		}
		log.Errorf("Error registering user %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to register. Please try again.")
		return
	}

	message := fmt.Sprintf("Welcome, **%s**! Your profile is ready. Balance: **%s$**",
		user.Username, common.FormatBalance(user.Balance))
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to register command: %v", err)
	}
}
