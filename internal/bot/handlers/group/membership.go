package group

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"
)

// handleJoin adds the caller to a group.
func (h *Handler) handleJoin(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	group := h.resolveGroup(ctx, event, data)
	if group == nil {
		return
	}

	userID := uint64(event.User().ID)

	isMember, err := h.db.Model().Group().IsMember(ctx, group.ID, userID)
	if err != nil {
		h.logger.Error("Failed to check membership", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong. Please try again.")

		return
	}

	if isMember {
		h.respond(event, fmt.Sprintf("You're already a member of **%s**.", group.Name))
		return
	}

	if err := h.db.Model().Group().AddMember(ctx, group.ID, userID); err != nil {
		h.logger.Error("Failed to add member", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong joining the group. Please try again.")

		return
	}

	h.respond(event, fmt.Sprintf("You joined **%s**. You'll be mentioned whenever it gets pinged.", group.Name))
}

// handleLeave removes the caller from a group, deleting the group when the
// caller was its last member.
func (h *Handler) handleLeave(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	group := h.resolveGroup(ctx, event, data)
	if group == nil {
		return
	}

	userID := uint64(event.User().ID)

	isMember, err := h.db.Model().Group().IsMember(ctx, group.ID, userID)
	if err != nil {
		h.logger.Error("Failed to check membership", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong. Please try again.")

		return
	}

	if !isMember {
		h.respond(event, fmt.Sprintf("You're not a member of **%s**.", group.Name))
		return
	}

	pruned, err := h.db.Model().Group().RemoveMemberAndPrune(ctx, group.ID, userID)
	if err != nil {
		h.logger.Error("Failed to remove member", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong leaving the group. Please try again.")

		return
	}

	if pruned {
		h.respond(event, fmt.Sprintf("You left **%s**. You were its last member, so the group was deleted.", group.Name))
		return
	}

	h.respond(event, fmt.Sprintf("You left **%s**.", group.Name))
}
