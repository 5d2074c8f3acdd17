package badge

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"steward/bot/common"
	"steward/service"
)

// handleBadgeCommand dispatches the admin badge subcommands
func (f *Feature) handleBadgeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, ok := common.RequireUser(ctx, f.userService, s, i)
	if !ok {
		return
	}
	if !common.RequireAdmin(user, s, i) {
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Missing subcommand.")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "create":
		f.handleCreate(ctx, s, i, sub)
	case "delete":
		f.handleDelete(ctx, s, i, sub)
	case "add":
		f.handleAdd(ctx, s, i, sub)
	case "remove":
		f.handleRemove(ctx, s, i, sub)
	case "remove-all":
		f.handleRemoveAll(ctx, s, i, sub)
	case "edit":
		f.handleEdit(ctx, s, i, sub)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}

func (f *Feature) handleCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	name := stringOption(sub, "name")
	description := stringOption(sub, "description")

	badge, err := f.badgeService.CreateBadge(ctx, name, description)
	if err != nil {
		if errors.Is(err, service.ErrBadgeExists) {
			common.RespondWithError(s, i, fmt.Sprintf("A badge named **%s** already exists.", name))
			return
		}
		log.Errorf("Error creating badge %q: %v", name, err)
		common.RespondWithError(s, i, "Unable to create the badge. Please try again.")
		return
	}

	respond(s, i, fmt.Sprintf("Created badge **%s**.", badge.Name))
}

func (f *Feature) handleDelete(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	name := stringOption(sub, "name")

	if err := f.badgeService.DeleteBadge(ctx, name); err != nil {
		if errors.Is(err, service.ErrBadgeNotFound) {
			common.RespondWithError(s, i, fmt.Sprintf("No badge named **%s** exists.", name))
			return
		}
		log.Errorf("Error deleting badge %q: %v", name, err)
		common.RespondWithError(s, i, "Unable to delete the badge. Please try again.")
		return
	}

	respond(s, i, fmt.Sprintf("Deleted badge **%s**.", name))
}

func (f *Feature) handleAdd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	name := stringOption(sub, "name")
	target := userOption(sub, s, "user")
	if target == nil {
		common.RespondWithError(s, i, "Invalid target user.")
		return
	}

	awarded, err := f.badgeService.AwardBadge(ctx, target.ID, name)
	if err != nil {
		f.respondBadgeUserError(s, i, name, err)
		return
	}
	if !awarded {
		common.RespondWithError(s, i, fmt.Sprintf("<@%s> already holds **%s**.", target.ID, name))
		return
	}

	respond(s, i, fmt.Sprintf("Awarded **%s** to <@%s>.", name, target.ID))
}

func (f *Feature) handleRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	name := stringOption(sub, "name")
	target := userOption(sub, s, "user")
	if target == nil {
		common.RespondWithError(s, i, "Invalid target user.")
		return
	}

	revoked, err := f.badgeService.RevokeBadge(ctx, target.ID, name)
	if err != nil {
		f.respondBadgeUserError(s, i, name, err)
		return
	}
	if !revoked {
		common.RespondWithError(s, i, fmt.Sprintf("<@%s> does not hold **%s**.", target.ID, name))
		return
	}

	respond(s, i, fmt.Sprintf("Removed **%s** from <@%s>.", name, target.ID))
}

func (f *Feature) handleRemoveAll(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	name := stringOption(sub, "name")

	count, err := f.badgeService.RevokeBadgeFromAll(ctx, name)
	if err != nil {
		if errors.Is(err, service.ErrBadgeNotFound) {
			common.RespondWithError(s, i, fmt.Sprintf("No badge named **%s** exists.", name))
			return
		}
		log.Errorf("Error revoking badge %q from all: %v", name, err)
		common.RespondWithError(s, i, "Unable to revoke the badge. Please try again.")
		return
	}

	respond(s, i, fmt.Sprintf("Removed **%s** from %d member(s).", name, count))
}

func (f *Feature) handleEdit(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	name := stringOption(sub, "name")

	var newName, newDescription *string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "new-name":
			v := opt.StringValue()
			newName = &v
		case "new-description":
			v := opt.StringValue()
			newDescription = &v
		}
	}

	if newName == nil && newDescription == nil {
		common.RespondWithError(s, i, "Provide a new name or a new description.")
		return
	}

	badge, err := f.badgeService.EditBadge(ctx, name, newName, newDescription)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadgeNotFound):
			common.RespondWithError(s, i, fmt.Sprintf("No badge named **%s** exists.", name))
		case errors.Is(err, service.ErrBadgeExists):
			common.RespondWithError(s, i, "A badge with the new name already exists.")
		default:
			log.Errorf("Error editing badge %q: %v", name, err)
			common.RespondWithError(s, i, "Unable to edit the badge. Please try again.")
		}
		return
	}

	respond(s, i, fmt.Sprintf("Updated badge **%s**.", badge.Name))
}

func (f *Feature) respondBadgeUserError(s *discordgo.Session, i *discordgo.InteractionCreate, name string, err error) {
	switch {
	case errors.Is(err, service.ErrBadgeNotFound):
		common.RespondWithError(s, i, fmt.Sprintf("No badge named **%s** exists.", name))
	case errors.Is(err, service.ErrNotRegistered):
		common.RespondWithError(s, i, "That member is not registered.")
	default:
		log.Errorf("Error updating badge %q holder: %v", name, err)
		common.RespondWithError(s, i, "Unable to update the badge. Please try again.")
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to badge command: %v", err)
	}
}

func stringOption(sub *discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func userOption(sub *discordgo.ApplicationCommandInteractionDataOption, s *discordgo.Session, name string) *discordgo.User {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt.UserValue(s)
		}
	}
	return nil
}
