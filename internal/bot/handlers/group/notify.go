package group

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/pingcrew/pingcrew/internal/bot/constants"
	"github.com/pingcrew/pingcrew/internal/bot/utils"
	"github.com/pingcrew/pingcrew/internal/discord/rate"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// handlePing notifies every member of a group by posting mention messages in
// the channel the command was used in.
func (h *Handler) handlePing(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	userID := uint64(event.User().ID)

	if remaining, onCooldown := h.limiter.Check(userID, rate.ActionNotify); onCooldown {
		h.respond(event, fmt.Sprintf("You recently pinged a group. You can ping again in %d seconds.",
			rate.RemainingSeconds(remaining)))
		return
	}

	group := h.resolveGroup(ctx, event, data)
	if group == nil {
		return
	}

	isMember, err := h.db.Model().Group().IsMember(ctx, group.ID, userID)
	if err != nil {
		h.logger.Error("Failed to check membership", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong. Please try again.")

		return
	}

	if !isMember {
		h.respond(event, fmt.Sprintf("Only members of **%s** can ping it. Join with `/group join name:%s`.",
			group.Name, group.Name))
		return
	}

	members, err := h.db.Model().Group().GetMembers(ctx, group.ID)
	if err != nil {
		h.logger.Error("Failed to get members", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong. Please try again.")

		return
	}

	// Bias future listings toward active groups.
	if err := h.db.Model().Group().TouchLastUsed(ctx, group.ID); err != nil {
		h.logger.Warn("Failed to touch group", zap.Int64("groupID", group.ID), zap.Error(err))
	}

	header := fmt.Sprintf("%s pinged **%s**", utils.UserMention(userID), group.Name)
	if message := data.String(constants.OptionMessage); message != "" {
		header += ": " + message
	}

	h.respond(event, header)

	// Large groups need several messages; send the mention chunks on a
	// bounded pool so one slow request doesn't serialize the rest.
	channelID := event.Channel().ID()
	mentions := &discord.AllowedMentions{
		Parse: []discord.AllowedMentionType{discord.AllowedMentionTypeUsers},
	}

	p := pool.New().WithErrors().WithMaxGoroutines(3)
	for _, chunk := range utils.ChunkMentions(members, utils.MaxMessageLength) {
		p.Go(func() error {
			_, err := event.Client().Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
				SetContent(chunk).
				SetAllowedMentions(mentions).
				Build())

			return err
		})
	}

	if err := p.Wait(); err != nil {
		h.logger.Error("Failed to deliver ping mentions",
			zap.Int64("groupID", group.ID),
			zap.Int("members", len(members)),
			zap.Error(err))
		return
	}

	h.limiter.Arm(userID, rate.ActionNotify)

	h.logger.Info("Group pinged",
		zap.Int64("groupID", group.ID),
		zap.Uint64("guildID", group.GuildID),
		zap.Uint64("userID", userID),
		zap.Int("members", len(members)))
}
