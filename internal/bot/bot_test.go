package bot

import (
	"testing"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/pingcrew/pingcrew/internal/bot/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The rest client and application id are methods on the client interface;
// this stops compiling if call sites regress to field access.
var _ = func(c bot.Client) {
	_, _ = c.Rest(), c.ApplicationID()
}

func TestCommands(t *testing.T) {
	cmds := commands()
	require.Len(t, cmds, 1)

	slash, ok := cmds[0].(discord.SlashCommandCreate)
	require.True(t, ok)
	assert.Equal(t, constants.GroupCommandName, slash.Name)
	assert.Equal(t, []discord.InteractionContextType{discord.InteractionContextTypeGuild}, slash.Contexts)

	subcommands := make(map[string]discord.ApplicationCommandOptionSubCommand, len(slash.Options))

	for _, option := range slash.Options {
		sub, ok := option.(discord.ApplicationCommandOptionSubCommand)
		require.True(t, ok)

		subcommands[sub.Name] = sub
	}

	for _, name := range []string{
		constants.SubcommandCreate,
		constants.SubcommandJoin,
		constants.SubcommandLeave,
		constants.SubcommandList,
		constants.SubcommandMembers,
		constants.SubcommandPing,
		constants.SubcommandDelete,
	} {
		assert.Contains(t, subcommands, name)
	}

	// Discord enforces the name length at the option level before the bot
	// ever sees the interaction.
	nameOption, ok := subcommands[constants.SubcommandCreate].Options[0].(discord.ApplicationCommandOptionString)
	require.True(t, ok)
	assert.True(t, nameOption.Required)
	require.NotNil(t, nameOption.MinLength)
	require.NotNil(t, nameOption.MaxLength)
	assert.Equal(t, 2, *nameOption.MinLength)
	assert.Equal(t, 32, *nameOption.MaxLength)

	assert.Empty(t, subcommands[constants.SubcommandList].Options)
}
