package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/logger"
	"github.com/disgoorg/disgo/handler"
)

// WrapWithLogging wraps a command handler with logging and a timeout.
// The interaction token expires well before Discord retries, so a
// stuck handler is reported instead of waited on.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
			slog.String("guild_id", e.GuildID().String()),
			slog.String("channel_id", e.ChannelID().String()),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)
			logger.LogCommand(name, duration, err)
			if err == nil && duration > 2*time.Second {
				slog.Warn("Command executed slowly",
					slog.String("type", "cmd"),
					slog.String("name", name),
					slog.Duration("took", duration),
					slog.String("status", "slow"),
				)
			}
			return err

		case <-time.After(config.CommandTimeout):
			slog.Error("Command timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.String("status", "timeout"),
				slog.Duration("timeout", config.CommandTimeout),
			)
			return fmt.Errorf("command timed out after %s", config.CommandTimeout)
		}
	}
}
