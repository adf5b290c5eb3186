package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/pingcrew/pingcrew/internal/database/types"
	"go.uber.org/zap"
)

// handleDelete removes a group and all its memberships. Allowed for the
// group's creator and for anyone with Manage Server.
func (h *Handler) handleDelete(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	group := h.resolveGroup(ctx, event, data)
	if group == nil {
		return
	}

	userID := uint64(event.User().ID)

	canManage := event.Member() != nil && event.Member().Permissions.Has(discord.PermissionManageGuild)
	if userID != group.CreatorID && !canManage {
		h.respond(event, fmt.Sprintf("Only the creator of **%s** or someone with Manage Server can delete it.", group.Name))
		return
	}

	if err := h.db.Model().Group().DeleteGroup(ctx, group.ID); err != nil {
		if errors.Is(err, types.ErrGroupNotFound) {
			// Already gone, most likely deleted concurrently.
			h.respond(event, fmt.Sprintf("**%s** no longer exists.", group.Name))
			return
		}

		h.logger.Error("Failed to delete group", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong deleting the group. Please try again.")

		return
	}

	h.logger.Info("Group deleted",
		zap.Int64("groupID", group.ID),
		zap.Uint64("guildID", group.GuildID),
		zap.Uint64("userID", userID))

	h.respond(event, fmt.Sprintf("Deleted **%s** and removed all its members.", group.Name))
}
