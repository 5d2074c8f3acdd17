package send

import (
	"github.com/bwmarrin/discordgo"

	"steward/service"
)

type Feature struct {
	economyService service.EconomyService
	userService    service.UserService
}

func New(economyService service.EconomyService, userService service.UserService) *Feature {
	return &Feature{
		economyService: economyService,
		userService:    userService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleSend(s, i)
}
