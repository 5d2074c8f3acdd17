package send

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/service"
)

func (f *Feature) handleSend(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if _, ok := common.RequireUser(ctx, f.userService, s, i); !ok {
		return
	}

	var amount int64
	var recipient *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipient = opt.UserValue(s)
		}
	}

	if recipient == nil {
		common.RespondWithError(s, i, "Invalid recipient.")
		return
	}
	if amount <= 0 {
		common.RespondWithError(s, i, "Amount must be positive.")
		return
	}
	if recipient.ID == i.Member.User.ID {
		common.RespondWithError(s, i, "You cannot send money to yourself.")
		return
	}
	if recipient.Bot {
		common.RespondWithError(s, i, "Bots have no use for money.")
		return
	}

	result, err := f.economyService.Transfer(ctx, i.Member.User.ID, recipient.ID, amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientBalance):
			common.RespondWithError(s, i, "You don't have enough money for that.")
		case errors.Is(err, service.ErrNotRegistered):
			common.RespondWithError(s, i, "The recipient is not registered.")
		default:
			log.Errorf("Error transferring %d from %s to %s: %v", amount, i.Member.User.ID, recipient.ID, err)
			common.RespondWithError(s, i, "Unable to complete the transfer. Please try again.")
		}
		return
	}

	message := fmt.Sprintf("Sent **%s$** to <@%s>. Your balance: **%s$**",
		common.FormatBalance(result.Amount), recipient.ID, common.FormatBalance(result.SenderBalance))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to send command: %v", err)
	}
}
