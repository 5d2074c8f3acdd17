package ping

import (
	"github.com/bwmarrin/discordgo"

	"steward/service"
)

// Feature answers the ping command with latency diagnostics
type Feature struct {
	userService service.UserService
}

func New(userService service.UserService) *Feature {
	return &Feature{userService: userService}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handlePing(s, i)
}
