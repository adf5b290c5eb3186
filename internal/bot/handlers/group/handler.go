// Package group implements the /group command handlers.
package group

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/pingcrew/pingcrew/internal/bot/constants"
	"github.com/pingcrew/pingcrew/internal/database"
	"github.com/pingcrew/pingcrew/internal/database/types"
	"github.com/pingcrew/pingcrew/internal/discord/rate"
	"go.uber.org/zap"
)

// Handler processes /group subcommands. It owns no state of its own; all
// durable state lives in the database client and all cooldown state in the
// limiter.
type Handler struct {
	db      database.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates the /group command handler.
func New(db database.Client, limiter *rate.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		db:      db,
		limiter: limiter,
		logger:  logger.Named("group_handler"),
	}
}

// Handle dispatches a deferred /group interaction to its subcommand handler.
func (h *Handler) Handle(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()

	if event.GuildID() == nil {
		h.respond(event, "Groups only exist inside a server. Use this command in a server channel.")
		return
	}

	subcommand := ""
	if data.SubCommandName != nil {
		subcommand = *data.SubCommandName
	}

	ctx := context.Background()

	switch subcommand {
	case constants.SubcommandCreate:
		h.handleCreate(ctx, event, data)
	case constants.SubcommandJoin:
		h.handleJoin(ctx, event, data)
	case constants.SubcommandLeave:
		h.handleLeave(ctx, event, data)
	case constants.SubcommandList:
		h.handleList(ctx, event)
	case constants.SubcommandMembers:
		h.handleMembers(ctx, event, data)
	case constants.SubcommandPing:
		h.handlePing(ctx, event, data)
	case constants.SubcommandDelete:
		h.handleDelete(ctx, event, data)
	default:
		h.respond(event, "Unknown subcommand.")
	}
}

// respond replaces the deferred interaction response with content.
func (h *Handler) respond(event *events.ApplicationCommandInteractionCreate, content string) {
	// Interaction responses never ping; only the dedicated ping messages do.
	_, err := event.Client().Rest().UpdateInteractionResponse(
		event.ApplicationID(), event.Token(),
		discord.NewMessageUpdateBuilder().
			SetContent(content).
			SetAllowedMentions(&discord.AllowedMentions{}).
			Build(),
	)
	if err != nil {
		h.logger.Error("Failed to update interaction response", zap.Error(err))
	}
}

// resolveGroup resolves the name option to a group, responding to the user
// when the group does not exist or the lookup fails. Returns nil when the
// interaction has already been answered.
func (h *Handler) resolveGroup(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) *types.Group {
	name := strings.TrimSpace(data.String(constants.OptionName))

	group, err := h.db.Model().Group().GetGroupByName(ctx, uint64(*event.GuildID()), name)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotFound) {
			h.respond(event, fmt.Sprintf("No group named **%s** exists in this server. Use `/group list` to see the available groups.", name))
		} else {
			h.logger.Error("Failed to look up group", zap.String("name", name), zap.Error(err))
			h.respond(event, "Something went wrong looking up that group. Please try again.")
		}

		return nil
	}

	return group
}
