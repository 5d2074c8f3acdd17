package common

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/models"
	"steward/service"
)

// RequireUser resolves the invoking member's profile, replying with an
// ephemeral error and returning false when they are not registered. Every
// gated command routes through here, which also refreshes last-active.
func RequireUser(ctx context.Context, userService service.UserService, s *discordgo.Session, i *discordgo.InteractionCreate) (*models.User, bool) {
	user, err := userService.GetByDiscordID(ctx, i.Member.User.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotRegistered) {
			RespondWithError(s, i, "You are not registered. Use `/register` first.")
			return nil, false
		}
		log.Errorf("Error resolving user %s: %v", i.Member.User.ID, err)
		RespondWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}

	if err := userService.TouchActivity(ctx, i.Member.User.ID); err != nil {
		log.Errorf("Error touching activity for %s: %v", i.Member.User.ID, err)
	}

	return user, true
}

// RequireAdmin rejects non-admin invokers with an ephemeral error
func RequireAdmin(user *models.User, s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if user.Role != models.RoleAdmin {
		RespondWithError(s, i, "You do not have permission to use this command.")
		return false
	}
	return true
}
