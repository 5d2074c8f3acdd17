package badge

import (
	"github.com/bwmarrin/discordgo"

	"steward/service"
)

type Feature struct {
	badgeService service.BadgeService
	userService  service.UserService
}

func New(badgeService service.BadgeService, userService service.UserService) *Feature {
	return &Feature{
		badgeService: badgeService,
		userService:  userService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBadgeCommand(s, i)
}
