// Package bot wires the Discord client to the command handlers.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/pingcrew/pingcrew/internal/bot/constants"
	groupHandler "github.com/pingcrew/pingcrew/internal/bot/handlers/group"
	"github.com/pingcrew/pingcrew/internal/database"
	"github.com/pingcrew/pingcrew/internal/discord/rate"
	"go.uber.org/zap"
)

// Bot owns the Discord client and the /group command handler.
type Bot struct {
	db      database.Client
	client  bot.Client
	logger  *zap.Logger
	handler *groupHandler.Handler
}

// New initializes a Bot with the gateway intents and event listeners it needs.
func New(token string, db database.Client, limiter *rate.Limiter, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		db:      db,
		logger:  logger.Named("bot"),
		handler: groupHandler.New(db, limiter, logger),
	}

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnGuildLeave:                    b.handleGuildLeave,
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client

	return b, nil
}

// Start registers the global commands with Discord and opens the gateway
// connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	if _, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

// handleApplicationCommandInteraction defers the response to stay inside
// Discord's acknowledgement window, then processes the command in a
// goroutine so slow storage calls never block the gateway reader.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		data := event.SlashCommandInteractionData()
		if data.CommandName() != constants.GroupCommandName {
			return
		}

		// Ping responses are public; everything else only concerns the caller.
		ephemeral := data.SubCommandName == nil || *data.SubCommandName != constants.SubcommandPing

		if err := event.DeferCreateMessage(ephemeral); err != nil {
			b.logger.Error("Failed to defer create message", zap.Error(err))
			return
		}

		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in application command interaction handler", zap.Any("panic", r))
			}

			b.logger.Debug("Application command interaction handled",
				zap.String("command", data.CommandName()),
				zap.Duration("duration", time.Since(start)))
		}()

		b.handler.Handle(event)
	}()
}

// handleGuildLeave purges a guild's groups when the bot is removed from it.
func (b *Bot) handleGuildLeave(event *events.GuildLeave) {
	go func() {
		guildID := uint64(event.GuildID)

		if err := b.db.Model().Group().PurgeGuild(context.Background(), guildID); err != nil {
			b.logger.Error("Failed to purge groups for departed guild",
				zap.Uint64("guildID", guildID),
				zap.Error(err))
		}
	}()
}

// commands builds the /group command tree registered with Discord.
func commands() []discord.ApplicationCommandCreate {
	minNameLength := 2
	maxNameLength := 32

	nameOption := discord.ApplicationCommandOptionString{
		Name:        constants.OptionName,
		Description: "Name of the group",
		Required:    true,
		MinLength:   &minNameLength,
		MaxLength:   &maxNameLength,
	}

	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        constants.GroupCommandName,
			Description: "Manage pingable member groups",
			Contexts: []discord.InteractionContextType{
				discord.InteractionContextTypeGuild,
			},
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SubcommandCreate,
					Description: "Create a group and become its first member",
					Options:     []discord.ApplicationCommandOption{nameOption},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SubcommandJoin,
					Description: "Join a group",
					Options:     []discord.ApplicationCommandOption{nameOption},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SubcommandLeave,
					Description: "Leave a group",
					Options:     []discord.ApplicationCommandOption{nameOption},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SubcommandList,
					Description: "List this server's groups",
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SubcommandMembers,
					Description: "Show the members of a group",
					Options:     []discord.ApplicationCommandOption{nameOption},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SubcommandPing,
					Description: "Mention every member of a group",
					Options: []discord.ApplicationCommandOption{
						nameOption,
						discord.ApplicationCommandOptionString{
							Name:        constants.OptionMessage,
							Description: "Message to include with the ping",
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SubcommandDelete,
					Description: "Delete a group (creator or Manage Server only)",
					Options:     []discord.ApplicationCommandOption{nameOption},
				},
			},
		},
	}
}
