package group

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/pingcrew/pingcrew/internal/bot/constants"
	"github.com/pingcrew/pingcrew/internal/database/types"
	"github.com/pingcrew/pingcrew/internal/discord/rate"
	"go.uber.org/zap"
)

// handleCreate creates a new group with the caller as its first member.
func (h *Handler) handleCreate(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	userID := uint64(event.User().ID)
	guildID := uint64(*event.GuildID())

	if remaining, onCooldown := h.limiter.Check(userID, rate.ActionCreate); onCooldown {
		h.respond(event, fmt.Sprintf("You recently created a group. You can create another in %d seconds.",
			rate.RemainingSeconds(remaining)))
		return
	}

	name := strings.TrimSpace(data.String(constants.OptionName))
	if err := types.ValidateGroupName(name); err != nil {
		h.respond(event, err.Error())
		return
	}

	// Advisory availability check for a friendlier message; the unique index
	// in the database remains the authoritative guard.
	if _, err := h.db.Model().Group().GetGroupByName(ctx, guildID, name); err == nil {
		h.respond(event, fmt.Sprintf("A group named **%s** already exists in this server.", name))
		return
	} else if !errors.Is(err, types.ErrGroupNotFound) {
		h.logger.Error("Failed to check group name availability", zap.Error(err))
		h.respond(event, "Something went wrong creating the group. Please try again.")

		return
	}

	group, err := h.db.Model().Group().CreateGroup(ctx, guildID, name, userID)
	if err != nil {
		if errors.Is(err, types.ErrGroupExists) {
			// Lost a race with a concurrent create for the same name.
			h.respond(event, fmt.Sprintf("A group named **%s** already exists in this server.", name))
			return
		}

		h.logger.Error("Failed to create group", zap.String("name", name), zap.Error(err))
		h.respond(event, "Something went wrong creating the group. Please try again.")

		return
	}

	h.limiter.Arm(userID, rate.ActionCreate)

	h.logger.Info("Group created",
		zap.Int64("groupID", group.ID),
		zap.Uint64("guildID", guildID),
		zap.String("name", group.Name),
		zap.Uint64("creatorID", userID))

	h.respond(event, fmt.Sprintf("Created **%s** and added you as its first member. Others can join with `/group join name:%s`.",
		group.Name, group.Name))
}
