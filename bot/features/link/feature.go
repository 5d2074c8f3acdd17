package link

import (
	"github.com/bwmarrin/discordgo"

	"steward/service"
)

type Feature struct {
	linkService service.LinkService
	userService service.UserService
}

func New(linkService service.LinkService, userService service.UserService) *Feature {
	return &Feature{
		linkService: linkService,
		userService: userService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleLink(s, i)
}
