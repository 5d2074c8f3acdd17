package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
)

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	users, err := f.userService.Leaderboard(ctx, defaultSize)
	if err != nil {
		log.Errorf("Error loading leaderboard: %v", err)
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	if len(users) == 0 {
		common.RespondWithError(s, i, "Nobody is on the leaderboard yet.")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var lines []string
	for rank, user := range users {
		marker := fmt.Sprintf("`#%d`", rank+1)
		if rank < len(medals) {
			marker = medals[rank]
		}
		lines = append(lines, fmt.Sprintf("%s **%s** - level %d (%d xp)", marker, user.Username, user.Level, user.XP))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Community Leaderboard",
		Description: strings.Join(lines, "\n"),
		Color:       0xFEE75C,
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to leaderboard command: %v", err)
	}
}
