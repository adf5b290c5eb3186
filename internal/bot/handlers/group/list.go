package group

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/pingcrew/pingcrew/internal/bot/utils"
	"go.uber.org/zap"
)

// handleList shows every group in the guild, least recently pinged first,
// with the caller's memberships marked.
func (h *Handler) handleList(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	guildID := uint64(*event.GuildID())
	userID := uint64(event.User().ID)

	groups, err := h.db.Model().Group().GetGroupsByGuild(ctx, guildID)
	if err != nil {
		h.logger.Error("Failed to list groups", zap.Uint64("guildID", guildID), zap.Error(err))
		h.respond(event, "Something went wrong listing the groups. Please try again.")

		return
	}

	if len(groups) == 0 {
		h.respond(event, "This server has no groups yet. Create one with `/group create`.")
		return
	}

	counts, err := h.db.Model().Group().MemberCounts(ctx, guildID)
	if err != nil {
		h.logger.Error("Failed to count members", zap.Uint64("guildID", guildID), zap.Error(err))
		h.respond(event, "Something went wrong listing the groups. Please try again.")

		return
	}

	memberOf, err := h.db.Model().Group().GetGroupsForUser(ctx, guildID, userID)
	if err != nil {
		h.logger.Error("Failed to list user groups", zap.Uint64("guildID", guildID), zap.Error(err))
		h.respond(event, "Something went wrong listing the groups. Please try again.")

		return
	}

	joined := make(map[int64]struct{}, len(memberOf))
	for _, g := range memberOf {
		joined[g.ID] = struct{}{}
	}

	var builder strings.Builder

	builder.WriteString("Available groups:\n")

	for _, g := range groups {
		line := fmt.Sprintf("- **%s** (%d members)", g.Name, counts[g.ID])
		if _, ok := joined[g.ID]; ok {
			line += " *(joined)*"
		}

		if builder.Len()+len(line)+1 > utils.MaxMessageLength {
			builder.WriteString("…")
			break
		}

		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	h.respond(event, builder.String())
}

// handleMembers shows who belongs to a group.
func (h *Handler) handleMembers(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	group := h.resolveGroup(ctx, event, data)
	if group == nil {
		return
	}

	members, err := h.db.Model().Group().GetMembers(ctx, group.ID)
	if err != nil {
		h.logger.Error("Failed to list members", zap.Int64("groupID", group.ID), zap.Error(err))
		h.respond(event, "Something went wrong listing the members. Please try again.")

		return
	}

	header := fmt.Sprintf("**%s** has %d members: ", group.Name, len(members))

	chunks := utils.ChunkMentions(members, utils.MaxMessageLength-len(header))
	if len(chunks) == 0 {
		// Unreachable while the last-leave prune holds, but don't render
		// a broken message if it ever breaks.
		h.respond(event, fmt.Sprintf("**%s** has no members.", group.Name))
		return
	}

	content := header + chunks[0]
	if len(chunks) > 1 {
		content += " …"
	}

	h.respond(event, content)
}
