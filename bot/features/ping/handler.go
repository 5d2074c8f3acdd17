package ping

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
)

func (f *Feature) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, ok := common.RequireUser(ctx, f.userService, s, i)
	if !ok {
		return
	}
	if !common.RequireAdmin(user, s, i) {
		return
	}

	latency := s.HeartbeatLatency()
	message := fmt.Sprintf("Pong! Gateway latency: **%dms**", latency.Milliseconds())
	if err := common.RespondWithContent(s, i, message, true); err != nil {
		log.Errorf("Error responding to ping command: %v", err)
	}
}
