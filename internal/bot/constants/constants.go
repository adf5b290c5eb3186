// Package constants defines the command surface shared across the bot.
package constants

// GroupCommandName is the top-level slash command.
const GroupCommandName = "group"

// Subcommand names under /group.
const (
	SubcommandCreate  = "create"
	SubcommandJoin    = "join"
	SubcommandLeave   = "leave"
	SubcommandList    = "list"
	SubcommandMembers = "members"
	SubcommandPing    = "ping"
	SubcommandDelete  = "delete"
)

// Option names.
const (
	OptionName    = "name"
	OptionMessage = "message"
)
