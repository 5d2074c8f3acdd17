package daily

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/service"
)

func (f *Feature) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if _, ok := common.RequireUser(ctx, f.userService, s, i); !ok {
		return
	}

	reward, err := f.economyService.ClaimDaily(ctx, i.Member.User.ID)
	if err != nil {
		if errors.Is(err, service.ErrDailyAlreadyClaimed) {
			common.RespondWithError(s, i, "You already claimed your daily reward today. Come back tomorrow!")
			return
		}
		log.Errorf("Error claiming daily for %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to claim your daily reward. Please try again.")
		return
	}

	message := fmt.Sprintf("You claimed **%s$** and **%d XP**! Balance: **%s$**",
		common.FormatBalance(reward.Money), reward.XP, common.FormatBalance(reward.NewBalance))
	if reward.Grant.LeveledUp() {
		message += fmt.Sprintf("\n🎉 You reached **level %d**!", reward.Grant.NewLevel)
	}

	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to daily command: %v", err)
	}
}
