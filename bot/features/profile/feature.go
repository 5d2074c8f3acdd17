package profile

import (
	"github.com/bwmarrin/discordgo"

	"steward/service"
)

type Feature struct {
	userService service.UserService
	maxLevel    int
}

func New(userService service.UserService, maxLevel int) *Feature {
	return &Feature{
		userService: userService,
		maxLevel:    maxLevel,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleProfile(s, i)
}
