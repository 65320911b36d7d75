package commands

import (
	"github.com/Re4LH/discord-bot/availbot"
	"github.com/Re4LH/discord-bot/availbot/handlers"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var PollCommand = discord.SlashCommandCreate{
	Name:        "poll",
	Description: "Daily availability poll management",
	// Guild-only: every subcommand dereferences the guild ID.
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "setup",
			Description: "Configure the poll channel and time in one go",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "Channel to post daily polls in",
					Required:    true,
					ChannelTypes: []discord.ChannelType{
						discord.ChannelTypeGuildText,
					},
				},
				discord.ApplicationCommandOptionInt{
					Name:        "hour",
					Description: "Hour of day to post (0-23)",
					MinValue:    intPtr(0),
					MaxValue:    intPtr(23),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minute",
					Description: "Minute of hour to post (0-59)",
					MinValue:    intPtr(0),
					MaxValue:    intPtr(59),
				},
				discord.ApplicationCommandOptionString{
					Name:        "timezone",
					Description: "IANA timezone name, e.g. Europe/Sofia",
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "channel",
			Description: "Change the channel daily polls are posted in",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "Channel to post daily polls in",
					Required:    true,
					ChannelTypes: []discord.ChannelType{
						discord.ChannelTypeGuildText,
					},
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "time",
			Description: "Change the daily posting time",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "hour",
					Description: "Hour of day to post (0-23)",
					Required:    true,
					MinValue:    intPtr(0),
					MaxValue:    intPtr(23),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minute",
					Description: "Minute of hour to post (0-59)",
					MinValue:    intPtr(0),
					MaxValue:    intPtr(59),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "timezone",
			Description: "Change the timezone the posting time is read in",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "timezone",
					Description: "IANA timezone name, e.g. Europe/Sofia",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "options",
			Description: "Replace the poll option labels",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "labels",
					Description: "Option labels separated by | (up to 7)",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "enable",
			Description: "Enable the daily poll schedule",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "disable",
			Description: "Disable the daily poll schedule",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "test",
			Description: "Post a test poll in this channel",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "manual",
			Description: "Post the daily poll right now",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "status",
			Description: "Show the current poll configuration",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "next",
			Description: "Show when the next poll will be posted",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "history",
			Description: "Browse recent polls and their votes",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "permissions",
			Description: "Check the bot's permissions in this channel",
		},
	},
}

type PollHandler struct {
	bot *availbot.Bot
}

func NewPollHandler(b *availbot.Bot) *PollHandler {
	return &PollHandler{bot: b}
}

func (h *PollHandler) Register(r handler.Router) {
	r.Route("/poll", func(r handler.Router) {
		r.Command("/setup", handlers.WrapWithLogging("poll/setup", h.HandleSetup))
		r.Command("/channel", handlers.WrapWithLogging("poll/channel", h.HandleChannel))
		r.Command("/time", handlers.WrapWithLogging("poll/time", h.HandleTime))
		r.Command("/timezone", handlers.WrapWithLogging("poll/timezone", h.HandleTimezone))
		r.Command("/options", handlers.WrapWithLogging("poll/options", h.HandleOptions))
		r.Command("/enable", handlers.WrapWithLogging("poll/enable", h.HandleEnable))
		r.Command("/disable", handlers.WrapWithLogging("poll/disable", h.HandleDisable))
		r.Command("/test", handlers.WrapWithLogging("poll/test", h.HandleTest))
		r.Command("/manual", handlers.WrapWithLogging("poll/manual", h.HandleManual))
		r.Command("/status", handlers.WrapWithLogging("poll/status", h.HandleStatus))
		r.Command("/next", handlers.WrapWithLogging("poll/next", h.HandleNext))
		r.Command("/history", handlers.WrapWithLogging("poll/history", h.HandleHistory))
		r.Command("/permissions", handlers.WrapWithLogging("poll/permissions", h.HandlePermissions))
	})
}

func intPtr(v int) *int {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
